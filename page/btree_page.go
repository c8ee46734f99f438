// btree_page.go - B-tree page header and cell pointer array
package page

import (
	"fmt"

	"github.com/wilhasse/go-sqlitefile/format"
)

// BTreePage is one page interpreted as a table or index B-tree node.
// Data is the full page slice; cell pointer offsets are relative to its
// start, including on page 1 where the B-tree header itself sits behind
// the 100-byte file header.
type BTreePage struct {
	PageNo uint32
	Data   []byte
	Hdr    BTreeHeader
}

// BTreeHeader is the 8-byte (leaf) or 12-byte (interior) header at the
// start of a page's B-tree content.
type BTreeHeader struct {
	Type           format.PageType
	FirstFreeblock uint16
	NumCells       uint16
	CellStart      uint16 // start of the cell content area; 0 means 65536
	Fragmented     uint8
	RightChild     uint32 // interior pages only

	HeaderOff  int // 0, or 100 on page 1
	CellPtrOff int // where the cell pointer array begins
}

// ParseBTreePage parses the B-tree header of page pageNo from its raw bytes.
func ParseBTreePage(pageNo uint32, data []byte) (*BTreePage, error) {
	off := 0
	if pageNo == format.SchemaRootPage {
		off = format.FileHeaderSize
	}
	if off+format.PageHeaderSizeLeaf > len(data) {
		return nil, fmt.Errorf("page %d: header: %w", pageNo, format.ErrShortRead)
	}

	t := format.PageType(data[off+format.PageOffType])
	if !t.Valid() {
		return nil, fmt.Errorf("page %d: type byte 0x%02x: %w", pageNo, uint8(t), format.ErrCorruptPageType)
	}

	freeblock, _ := format.Be16(data, off+format.PageOffFreeblock)
	numCells, _ := format.Be16(data, off+format.PageOffNumCells)
	cellStart, _ := format.Be16(data, off+format.PageOffCellStart)

	hdr := BTreeHeader{
		Type:           t,
		FirstFreeblock: freeblock,
		NumCells:       numCells,
		CellStart:      cellStart,
		Fragmented:     data[off+format.PageOffFragmented],
		HeaderOff:      off,
	}
	if t.IsLeaf() {
		hdr.CellPtrOff = off + format.PageHeaderSizeLeaf
	} else {
		right, err := format.Be32(data, off+format.PageOffRightChild)
		if err != nil {
			return nil, fmt.Errorf("page %d: right child: %w", pageNo, err)
		}
		hdr.RightChild = right
		hdr.CellPtrOff = off + format.PageHeaderSizeInterior
	}

	if hdr.CellPtrOff+int(numCells)*format.CellPtrSize > len(data) {
		return nil, fmt.Errorf("page %d: cell pointer array overruns page: %w", pageNo, format.ErrShortRead)
	}
	return &BTreePage{PageNo: pageNo, Data: data, Hdr: hdr}, nil
}

func (p *BTreePage) IsLeaf() bool  { return p.Hdr.Type.IsLeaf() }
func (p *BTreePage) IsTable() bool { return p.Hdr.Type.IsTable() }
func (p *BTreePage) IsIndex() bool { return p.Hdr.Type.IsIndex() }
func (p *BTreePage) NumCells() int { return int(p.Hdr.NumCells) }

// CellPointer returns the page-relative offset of cell i.
func (p *BTreePage) CellPointer(i int) (int, error) {
	if i < 0 || i >= p.NumCells() {
		return 0, fmt.Errorf("page %d: cell %d of %d out of range", p.PageNo, i, p.NumCells())
	}
	ptr, _ := format.Be16(p.Data, p.Hdr.CellPtrOff+i*format.CellPtrSize)
	if int(ptr) >= len(p.Data) {
		return 0, fmt.Errorf("page %d: cell %d offset %d beyond page: %w",
			p.PageNo, i, ptr, format.ErrMalformedRecord)
	}
	return int(ptr), nil
}

// CellPointers returns the whole cell pointer array in array order.
func (p *BTreePage) CellPointers() ([]int, error) {
	out := make([]int, p.NumCells())
	for i := range out {
		ptr, err := p.CellPointer(i)
		if err != nil {
			return nil, err
		}
		out[i] = ptr
	}
	return out, nil
}
