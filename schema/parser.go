// parser.go - Parse CREATE TABLE SQL statements to extract table shapes
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// colKeyPrimary is sqlparser's column-level PRIMARY KEY option. The
// constant itself is unexported upstream; its value is stable in the
// pinned release.
const colKeyPrimary = sqlparser.ColumnKeyOption(1)

// ParseTableDef parses the CREATE TABLE text stored in the schema table
// and returns the table's column layout.
func ParseTableDef(sql string) (*TableDef, error) {
	stmt, err := sqlparser.Parse(normalizeDDL(sql))
	if err != nil {
		return nil, fmt.Errorf("parse SQL failed: %w", err)
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != sqlparser.CreateStr {
		return nil, fmt.Errorf("statement is not CREATE TABLE")
	}
	if ddl.TableSpec == nil {
		return nil, fmt.Errorf("no table spec in CREATE TABLE")
	}

	name := ddl.NewName.Name.String()
	if name == "" {
		name = ddl.Table.Name.String()
	}
	td := NewTableDef(name)

	var primaryKeys []string
	for _, col := range ddl.TableSpec.Columns {
		declared := col.Type.Type
		column := &Column{
			Name:         col.Name.String(),
			DeclaredType: declared,
			Affinity:     AffinityOf(declared),
			NotNull:      bool(col.Type.NotNull),
			AutoIncr:     bool(col.Type.Autoincrement),
		}
		if err := td.AddColumn(column); err != nil {
			return nil, err
		}
		if col.Type.KeyOpt == colKeyPrimary {
			primaryKeys = append(primaryKeys, column.Name)
		}
	}

	// A table-level PRIMARY KEY(...) clause overrides column-level marks.
	for _, idx := range ddl.TableSpec.Indexes {
		if idx.Info.Primary {
			primaryKeys = nil
			for _, col := range idx.Columns {
				primaryKeys = append(primaryKeys, col.Column.String())
			}
		}
	}

	if len(primaryKeys) > 0 {
		if err := td.SetPrimaryKeys(primaryKeys); err != nil {
			return nil, err
		}
	}
	return td, nil
}

var (
	rePKAutoinc     = regexp.MustCompile(`(?i)\bprimary\s+key\s+autoincrement\b`)
	reAutoincrement = regexp.MustCompile(`(?i)\bautoincrement\b`)
	reWithoutRowid  = regexp.MustCompile(`(?i)\bwithout\s+rowid\s*$`)
	reIfNotExists   = regexp.MustCompile(`(?i)\bif\s+not\s+exists\b`)
	reQuotedIdent   = regexp.MustCompile("\"([A-Za-z_][A-Za-z0-9_]*)\"|\\[([A-Za-z_][A-Za-z0-9_]*)\\]")
)

// normalizeDDL rewrites SQLite-dialect spellings that the parser's grammar
// does not know: AUTOINCREMENT, bracket/double-quoted identifiers, a
// trailing WITHOUT ROWID clause, IF NOT EXISTS.
func normalizeDDL(sql string) string {
	s := strings.TrimSpace(sql)
	s = strings.TrimSuffix(s, ";")
	s = reWithoutRowid.ReplaceAllString(s, "")
	s = reIfNotExists.ReplaceAllString(s, "")
	// SQLite writes AUTOINCREMENT after PRIMARY KEY; the parser's grammar
	// wants auto_increment before the key option.
	s = rePKAutoinc.ReplaceAllString(s, "auto_increment primary key")
	s = reAutoincrement.ReplaceAllString(s, "auto_increment")
	s = reQuotedIdent.ReplaceAllString(s, "`$1$2`")
	return s
}
