// cell.go - B-tree cell parsing and local-payload thresholds
package btree

import (
	"fmt"

	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/page"
)

// Cell is one parsed B-tree cell. Which fields are meaningful depends on
// the page type: table interior cells carry only ChildPage and Rowid;
// leaf and index cells carry a payload that may spill to overflow pages.
type Cell struct {
	Rowid       int64  // table cells: the row key
	ChildPage   uint32 // interior cells: left child pointer
	PayloadSize int64  // declared total payload length
	Local       []byte // payload bytes stored on this page (borrowed view)
	Overflow    uint32 // first overflow page, 0 when the payload is all local
}

// ParseCell parses the cell at page-relative offset off on p.
func ParseCell(p *page.BTreePage, off, usable int) (*Cell, error) {
	switch p.Hdr.Type {
	case format.PageLeafTable:
		return parseTableLeafCell(p, off, usable)
	case format.PageInteriorTable:
		return parseTableInteriorCell(p, off)
	case format.PageLeafIndex:
		return parseIndexCell(p, off, usable, false)
	case format.PageInteriorIndex:
		return parseIndexCell(p, off, usable, true)
	}
	return nil, fmt.Errorf("page %d: type 0x%02x: %w", p.PageNo, uint8(p.Hdr.Type), format.ErrCorruptPageType)
}

// Table leaf cell: varint payload size, varint rowid, payload,
// optional 4-byte first-overflow-page pointer.
func parseTableLeafCell(p *page.BTreePage, off, usable int) (*Cell, error) {
	size, n, err := format.GetVarint(p.Data, off)
	if err != nil {
		return nil, pageErr(p, off, err)
	}
	pos := off + n
	rowid, n, err := format.GetVarint(p.Data, pos)
	if err != nil {
		return nil, pageErr(p, pos, err)
	}
	pos += n

	c := &Cell{Rowid: int64(rowid), PayloadSize: int64(size)}
	return c, attachPayload(c, p, pos, usable, true)
}

// Table interior cell: 4-byte child page, varint rowid (the largest rowid
// in the child's subtree; routing only).
func parseTableInteriorCell(p *page.BTreePage, off int) (*Cell, error) {
	child, err := format.Be32(p.Data, off)
	if err != nil {
		return nil, pageErr(p, off, err)
	}
	rowid, _, err := format.GetVarint(p.Data, off+4)
	if err != nil {
		return nil, pageErr(p, off+4, err)
	}
	return &Cell{ChildPage: child, Rowid: int64(rowid)}, nil
}

// Index cell: [4-byte child page when interior,] varint payload size,
// payload, optional overflow pointer. The payload is itself a record whose
// trailing column is the referenced table rowid.
func parseIndexCell(p *page.BTreePage, off, usable int, interior bool) (*Cell, error) {
	c := &Cell{}
	pos := off
	if interior {
		child, err := format.Be32(p.Data, pos)
		if err != nil {
			return nil, pageErr(p, pos, err)
		}
		c.ChildPage = child
		pos += 4
	}
	size, n, err := format.GetVarint(p.Data, pos)
	if err != nil {
		return nil, pageErr(p, pos, err)
	}
	c.PayloadSize = int64(size)
	return c, attachPayload(c, p, pos+n, usable, false)
}

// attachPayload slices the local portion of the payload and records the
// first overflow page when the declared size spills past it.
func attachPayload(c *Cell, p *page.BTreePage, pos, usable int, isTable bool) error {
	// The size varint is unsigned; a value past int64 range has wrapped
	// negative and no real payload can be that large.
	if c.PayloadSize < 0 {
		return pageErr(p, pos, fmt.Errorf("declared payload size %d: %w", c.PayloadSize, format.ErrMalformedRecord))
	}
	local := localPayload(c.PayloadSize, usable, isTable)
	if pos+local > len(p.Data) {
		return pageErr(p, pos, fmt.Errorf("payload %d bytes overruns page: %w", local, format.ErrMalformedRecord))
	}
	c.Local = p.Data[pos : pos+local]
	if int64(local) < c.PayloadSize {
		next, err := format.Be32(p.Data, pos+local)
		if err != nil {
			return pageErr(p, pos+local, err)
		}
		if next == 0 {
			return pageErr(p, pos+local, fmt.Errorf("missing overflow pointer: %w", format.ErrMalformedRecord))
		}
		c.Overflow = next
	}
	return nil
}

// localPayload computes how many payload bytes live on the B-tree page
// itself, per the format's embedded-payload fractions.
func localPayload(payloadSize int64, usable int, isTable bool) int {
	u := int64(usable)
	maxLocal := u - 35
	if !isTable {
		maxLocal = (u-12)*64/255 - 23
	}
	if payloadSize <= maxLocal {
		return int(payloadSize)
	}
	minLocal := (u-12)*32/255 - 23
	k := minLocal + (payloadSize-minLocal)%(u-4)
	if k <= maxLocal {
		return int(k)
	}
	return int(minLocal)
}

func pageErr(p *page.BTreePage, off int, err error) error {
	return fmt.Errorf("page %d offset %d: %w", p.PageNo, off, err)
}
