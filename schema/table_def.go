// table_def.go - Table definition built from a CREATE TABLE statement
package schema

import (
	"fmt"
	"strings"
)

// TableDef is the parsed shape of one table: its columns in declaration
// order plus primary-key and rowid-alias metadata.
type TableDef struct {
	Name        string
	Columns     []*Column
	PrimaryKeys []string

	columnIdx  map[string]int // lower-cased name -> ordinal
	rowidAlias int            // ordinal of the INTEGER PRIMARY KEY column, -1 if none
}

func NewTableDef(name string) *TableDef {
	return &TableDef{
		Name:       name,
		columnIdx:  make(map[string]int),
		rowidAlias: -1,
	}
}

// AddColumn appends a column; names are unique case-insensitively, the way
// the format treats identifiers.
func (td *TableDef) AddColumn(col *Column) error {
	key := strings.ToLower(col.Name)
	if _, exists := td.columnIdx[key]; exists {
		return fmt.Errorf("table %s: duplicate column %s", td.Name, col.Name)
	}
	col.Ordinal = len(td.Columns)
	td.Columns = append(td.Columns, col)
	td.columnIdx[key] = col.Ordinal
	return nil
}

// SetPrimaryKeys marks the named columns as the primary key and decides
// whether the table has a rowid alias (exactly one key column, declared
// INTEGER).
func (td *TableDef) SetPrimaryKeys(keys []string) error {
	td.PrimaryKeys = keys
	for _, key := range keys {
		i, ok := td.columnIdx[strings.ToLower(key)]
		if !ok {
			return fmt.Errorf("table %s: primary key column %s not found", td.Name, key)
		}
		td.Columns[i].IsPrimaryKey = true
	}
	td.rowidAlias = -1
	if len(keys) == 1 {
		i := td.columnIdx[strings.ToLower(keys[0])]
		if td.Columns[i].AliasesRowid() {
			td.rowidAlias = i
		}
	}
	return nil
}

// ColumnIndex returns the ordinal of the named column.
func (td *TableDef) ColumnIndex(name string) (int, bool) {
	i, ok := td.columnIdx[strings.ToLower(name)]
	return i, ok
}

func (td *TableDef) Column(i int) (*Column, error) {
	if i < 0 || i >= len(td.Columns) {
		return nil, fmt.Errorf("table %s: column ordinal %d out of range", td.Name, i)
	}
	return td.Columns[i], nil
}

func (td *TableDef) NumColumns() int { return len(td.Columns) }

// RowidAlias returns the ordinal of the column aliasing the rowid, or -1.
func (td *TableDef) RowidAlias() int { return td.rowidAlias }

// ColumnNames returns the declared column names in order.
func (td *TableDef) ColumnNames() []string {
	out := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		out[i] = c.Name
	}
	return out
}

func (td *TableDef) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Table: %s\n", td.Name)
	for _, col := range td.Columns {
		fmt.Fprintf(&sb, "  %d. %s %s", col.Ordinal, col.Name, col.DeclaredType)
		if col.NotNull {
			sb.WriteString(" NOT NULL")
		}
		if col.IsPrimaryKey {
			sb.WriteString(" PRIMARY KEY")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
