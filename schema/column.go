// column.go - Column definition and type affinity
package schema

import "strings"

// Affinity is the preferred storage class a declared column type maps to.
type Affinity string

const (
	AffinityText    Affinity = "TEXT"
	AffinityNumeric Affinity = "NUMERIC"
	AffinityInteger Affinity = "INTEGER"
	AffinityReal    Affinity = "REAL"
	AffinityBlob    Affinity = "BLOB"
)

// AffinityOf applies the format's declared-type affinity rules, in order:
// INT wins, then CHAR/CLOB/TEXT, then BLOB (or no type), then
// REAL/FLOA/DOUB, otherwise NUMERIC.
func AffinityOf(declared string) Affinity {
	d := strings.ToUpper(declared)
	switch {
	case strings.Contains(d, "INT"):
		return AffinityInteger
	case strings.Contains(d, "CHAR"), strings.Contains(d, "CLOB"), strings.Contains(d, "TEXT"):
		return AffinityText
	case d == "", strings.Contains(d, "BLOB"):
		return AffinityBlob
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"):
		return AffinityReal
	}
	return AffinityNumeric
}

// Column is one column of a table definition.
type Column struct {
	Name         string
	DeclaredType string // the type text as written in the CREATE statement
	Affinity     Affinity
	Ordinal      int // position in the table, 0-based
	NotNull      bool
	IsPrimaryKey bool
	AutoIncr     bool
}

// AliasesRowid reports whether this column is declared exactly
// INTEGER PRIMARY KEY and so aliases the rowid: its record slot is stored
// NULL and reads come from the row key instead. Only meaningful when it is
// the table's sole primary-key column; TableDef.RowidAlias enforces that.
func (c *Column) AliasesRowid() bool {
	return c.IsPrimaryKey && strings.EqualFold(c.DeclaredType, "integer")
}
