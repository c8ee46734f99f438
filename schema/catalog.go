// catalog.go - Schema catalog built from the database's own schema table
package schema

import (
	"fmt"
	"strings"

	"github.com/wilhasse/go-sqlitefile/btree"
	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/page"
	"github.com/wilhasse/go-sqlitefile/record"
)

// Entry is one row of the schema table: a table, index, view or trigger,
// with its root page and original creation text. The creation text is kept
// raw; ParseTableDef interprets it on demand.
type Entry struct {
	Type     string // "table", "index", "view", "trigger"
	Name     string
	TblName  string // associated table (for indexes and triggers)
	RootPage uint32
	SQL      string
}

// Catalog maps object names to schema entries. It is built fresh by every
// Build call; nothing is cached across calls.
type Catalog struct {
	entries map[string]Entry // lower-cased name -> entry
	order   []string         // names in schema-table row order
}

// Build walks the B-tree rooted at the schema page with the same
// general-purpose walker used for user tables and decodes each row's five
// columns positionally.
func Build(r *page.Reader) (*Catalog, error) {
	// Without a readable schema root nothing else can proceed.
	if _, err := r.ReadPage(format.SchemaRootPage); err != nil {
		return nil, fmt.Errorf("%w: %v", format.ErrSchemaTableMissing, err)
	}

	w := btree.NewWalker(r)
	cur := w.Iterate(format.SchemaRootPage)

	cat := &Catalog{entries: make(map[string]Entry)}
	for {
		ok, err := cur.Next()
		if err != nil {
			return nil, fmt.Errorf("schema table: %w", err)
		}
		if !ok {
			break
		}
		entry, err := entryFromRecord(cur.Record())
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(entry.Name)
		if _, dup := cat.entries[key]; !dup {
			cat.order = append(cat.order, entry.Name)
		}
		cat.entries[key] = entry
	}
	return cat, nil
}

// entryFromRecord decodes the fixed five-column schema row layout:
// type, name, tbl_name, rootpage, sql.
func entryFromRecord(rec *record.Record) (Entry, error) {
	if rec.NumColumns() < 5 {
		return Entry{}, fmt.Errorf("schema row has %d columns: %w", rec.NumColumns(), format.ErrMalformedRecord)
	}
	root := rec.Column(3)
	if root.Type != record.TypeInteger || root.Int < 0 {
		return Entry{}, fmt.Errorf("schema row rootpage %v: %w", root, format.ErrMalformedRecord)
	}
	return Entry{
		Type:     rec.Column(0).Text,
		Name:     rec.Column(1).Text,
		TblName:  rec.Column(2).Text,
		RootPage: uint32(root.Int),
		SQL:      rec.Column(4).Text,
	}, nil
}

// Lookup finds an object by name, case-insensitively.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	return e, ok
}

// Tables returns the names of user tables in schema order, filtering the
// format's internal sqlite_* objects.
func (c *Catalog) Tables() []string {
	var out []string
	for _, name := range c.order {
		e := c.entries[strings.ToLower(name)]
		if e.Type == "table" && !strings.HasPrefix(strings.ToLower(name), "sqlite_") {
			out = append(out, name)
		}
	}
	return out
}

// Objects returns every schema entry in schema order.
func (c *Catalog) Objects() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[strings.ToLower(name)])
	}
	return out
}

// TableDef looks up a table and parses its creation text.
func (c *Catalog) TableDef(name string) (*TableDef, Entry, error) {
	e, ok := c.Lookup(name)
	if !ok || e.Type != "table" {
		return nil, Entry{}, fmt.Errorf("no such table: %s", name)
	}
	td, err := ParseTableDef(e.SQL)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("table %s: %w", name, err)
	}
	return td, e, nil
}
