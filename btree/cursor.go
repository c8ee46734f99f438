// cursor.go - Lazy in-order traversal of table and index B-trees
package btree

import (
	"fmt"

	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/page"
	"github.com/wilhasse/go-sqlitefile/record"
)

// MaxDepth bounds the explicit traversal stack. A well-formed tree over a
// maximal database is far shallower than this.
const MaxDepth = 20

// Walker opens cursors over the B-trees of one database file.
type Walker struct {
	pages *page.Reader
}

func NewWalker(r *page.Reader) *Walker { return &Walker{pages: r} }

// Iterate returns a fresh cursor positioned before the first entry of the
// tree rooted at root. Separate cursors share no mutable state, so a
// traversal is restartable by calling Iterate again.
func (w *Walker) Iterate(root uint32) *Cursor {
	return &Cursor{walker: w, root: root}
}

// frame is one level of the traversal stack: a page and the index of the
// cell being worked. For interior pages idx == NumCells addresses the
// rightmost child; descended marks that idx's child subtree was consumed.
type frame struct {
	pg        *page.BTreePage
	idx       int
	descended bool
}

// Cursor walks one B-tree in order, yielding entries lazily. For table
// trees entries arrive in strictly ascending rowid order; for index trees
// in key order, with the referenced table rowid as the record's trailing
// column. The first decode failure stops the cursor permanently.
type Cursor struct {
	walker  *Walker
	root    uint32
	stack   []frame
	started bool
	done    bool
	err     error

	isTable bool
	rowid   int64
	rec     *record.Record
}

// Rowid is the current entry's row key. For index trees it is the rowid
// stored in the key record's trailing column.
func (c *Cursor) Rowid() int64 { return c.rowid }

// Record is the current entry's decoded record.
func (c *Cursor) Record() *record.Record { return c.rec }

// Err returns the failure that stopped the cursor, if any.
func (c *Cursor) Err() error { return c.err }

// Next advances to the next entry. It returns false when the tree is
// exhausted or a decode error occurred; the error is also returned.
func (c *Cursor) Next() (bool, error) {
	if c.done {
		return false, c.err
	}
	if !c.started {
		if err := c.push(c.root); err != nil {
			return false, c.fail(err)
		}
		rootType := c.stack[0].pg.Hdr.Type
		c.isTable = rootType.IsTable()
		c.started = true
	}

	for len(c.stack) > 0 {
		f := &c.stack[len(c.stack)-1]

		if f.pg.IsLeaf() {
			if f.idx < f.pg.NumCells() {
				i := f.idx
				f.idx++
				if err := c.emit(f.pg, i); err != nil {
					return false, c.fail(err)
				}
				return true, nil
			}
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}

		// Interior page.
		n := f.pg.NumCells()
		if f.idx > n {
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		if !f.descended {
			child, err := c.childAt(f.pg, f.idx)
			if err != nil {
				return false, c.fail(err)
			}
			f.descended = true
			if err := c.push(child); err != nil {
				return false, c.fail(err)
			}
			continue
		}

		// Back from the child at idx. Index interior cells carry a key of
		// their own, emitted between the child and the next subtree.
		f.descended = false
		if f.idx < n && f.pg.IsIndex() {
			i := f.idx
			f.idx++
			if err := c.emit(f.pg, i); err != nil {
				return false, c.fail(err)
			}
			return true, nil
		}
		f.idx++
	}

	c.done = true
	return false, nil
}

func (c *Cursor) push(pageNo uint32) error {
	if len(c.stack) >= MaxDepth {
		return fmt.Errorf("tree rooted at page %d deeper than %d: %w", c.root, MaxDepth, format.ErrCorruptPageType)
	}
	pg, err := c.walker.pages.ReadPage(pageNo)
	if err != nil {
		return err
	}
	if c.started && pg.IsTable() != c.isTable {
		return fmt.Errorf("page %d: %s node in a %s tree: %w",
			pageNo, pg.Hdr.Type, treeKind(c.isTable), format.ErrCorruptPageType)
	}
	c.stack = append(c.stack, frame{pg: pg})
	return nil
}

func (c *Cursor) childAt(pg *page.BTreePage, idx int) (uint32, error) {
	if idx == pg.NumCells() {
		return pg.Hdr.RightChild, nil
	}
	off, err := pg.CellPointer(idx)
	if err != nil {
		return 0, err
	}
	cell, err := ParseCell(pg, off, c.walker.pages.UsableSize())
	if err != nil {
		return 0, err
	}
	return cell.ChildPage, nil
}

// emit decodes cell idx of pg into the cursor's current entry.
func (c *Cursor) emit(pg *page.BTreePage, idx int) error {
	off, err := pg.CellPointer(idx)
	if err != nil {
		return err
	}
	cell, err := ParseCell(pg, off, c.walker.pages.UsableSize())
	if err != nil {
		return err
	}
	payload, err := c.walker.Payload(cell)
	if err != nil {
		return fmt.Errorf("page %d cell %d: %w", pg.PageNo, idx, err)
	}
	rec, _, err := record.Decode(payload, 0)
	if err != nil {
		return fmt.Errorf("page %d cell %d: %w", pg.PageNo, idx, err)
	}

	c.rec = rec
	if c.isTable {
		c.rowid = cell.Rowid
	} else {
		// Index key records reference the table row via their last column.
		last := rec.Column(rec.NumColumns() - 1)
		c.rowid = last.Int
	}
	return nil
}

func (c *Cursor) fail(err error) error {
	c.done = true
	c.err = err
	return err
}

func treeKind(isTable bool) string {
	if isTable {
		return "table"
	}
	return "index"
}
