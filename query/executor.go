// executor.go - Read-only query execution over table B-trees
package query

import (
	"fmt"
	"strings"

	"github.com/wilhasse/go-sqlitefile/btree"
	"github.com/wilhasse/go-sqlitefile/page"
	"github.com/wilhasse/go-sqlitefile/record"
	"github.com/wilhasse/go-sqlitefile/schema"
)

// Executor answers simple read-only queries: it resolves table names
// through the catalog, drives the B-tree walker over the table's root and
// projects or filters the decoded records.
type Executor struct {
	walker *btree.Walker
	cat    *schema.Catalog
}

func New(r *page.Reader, cat *schema.Catalog) *Executor {
	return &Executor{walker: btree.NewWalker(r), cat: cat}
}

// Row is one materialized table row: the row key plus every stored column.
type Row struct {
	Rowid   int64
	Columns []record.Value

	def *schema.TableDef
}

// Value resolves a column by name. "rowid" and any INTEGER PRIMARY KEY
// alias read from the row key; an alias column's stored slot is NULL.
func (r Row) Value(name string) (record.Value, bool) {
	if strings.EqualFold(name, "rowid") {
		return record.Integer(r.Rowid), true
	}
	i, ok := r.def.ColumnIndex(name)
	if !ok {
		return record.Value{}, false
	}
	v := r.Columns[i]
	if v.IsNull() && i == r.def.RowidAlias() {
		return record.Integer(r.Rowid), true
	}
	return v, true
}

// Count returns the number of rows in table. The table definition is not
// needed; only the root page is.
func (e *Executor) Count(table string) (int64, error) {
	entry, ok := e.cat.Lookup(table)
	if !ok || entry.Type != "table" {
		return 0, fmt.Errorf("no such table: %s", table)
	}
	var n int64
	cur := e.walker.Iterate(entry.RootPage)
	for {
		ok, err := cur.Next()
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", table, err)
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// Scan walks every row of table in rowid order, invoking fn for each.
// Returning false from fn stops the scan early.
func (e *Executor) Scan(table string, fn func(Row) (bool, error)) error {
	def, entry, err := e.cat.TableDef(table)
	if err != nil {
		return err
	}
	cur := e.walker.Iterate(entry.RootPage)
	for {
		ok, err := cur.Next()
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if !ok {
			return nil
		}
		rec := cur.Record()
		// Rows may store fewer columns than the schema declares (columns
		// added after the row was written); pad with NULL.
		cols := make([]record.Value, def.NumColumns())
		for i := range cols {
			cols[i] = rec.Column(i)
		}
		more, err := fn(Row{Rowid: cur.Rowid(), Columns: cols, def: def})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Result is a finished projection: column headers and value rows.
type Result struct {
	Columns []string
	Rows    [][]record.Value
}

// Select projects the named columns (nil or ["*"] for all) from table,
// applying the optional filter and row limit (limit <= 0 means no limit).
func (e *Executor) Select(table string, cols []string, where *Expr, limit int) (*Result, error) {
	def, _, err := e.cat.TableDef(table)
	if err != nil {
		return nil, err
	}

	if len(cols) == 0 || (len(cols) == 1 && cols[0] == "*") {
		cols = def.ColumnNames()
	}
	for _, name := range cols {
		if _, ok := def.ColumnIndex(name); !ok && !strings.EqualFold(name, "rowid") {
			return nil, fmt.Errorf("no such column: %s", name)
		}
	}
	if where != nil {
		for _, name := range where.Columns() {
			if _, ok := def.ColumnIndex(name); !ok && !strings.EqualFold(name, "rowid") {
				return nil, fmt.Errorf("no such column: %s", name)
			}
		}
	}

	res := &Result{Columns: cols}
	err = e.Scan(table, func(row Row) (bool, error) {
		keep, err := where.Eval(row.Value)
		if err != nil {
			return false, err
		}
		if !keep {
			return true, nil
		}
		out := make([]record.Value, len(cols))
		for i, name := range cols {
			v, _ := row.Value(name)
			out[i] = v
		}
		res.Rows = append(res.Rows, out)
		return limit <= 0 || len(res.Rows) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
