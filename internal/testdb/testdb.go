// Package testdb assembles synthetic SQLite database images for tests.
// It encodes records, cells and pages by hand so the reader's decoding can
// be checked against independently constructed bytes.
package testdb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/record"
)

// DB accumulates pages and renders a complete database file image.
// Page 1 must be added first; its first 100 bytes are overwritten with the
// file header by Bytes.
type DB struct {
	PageSize int
	pages    [][]byte
}

func New(pageSize int) *DB { return &DB{PageSize: pageSize} }

// AddPage appends a page image and returns its 1-based page number. A nil
// page reserves the slot for a later SetPage, letting a page's content
// refer to its own or a later page number.
func (d *DB) AddPage(p []byte) uint32 {
	if p != nil && len(p) != d.PageSize {
		panic("testdb: page size mismatch")
	}
	d.pages = append(d.pages, p)
	return uint32(len(d.pages))
}

// SetPage fills in the image of a previously added page.
func (d *DB) SetPage(n uint32, p []byte) {
	if len(p) != d.PageSize {
		panic("testdb: page size mismatch")
	}
	d.pages[n-1] = p
}

// Bytes renders the file: all pages back to back, with the database header
// written over the start of page 1.
func (d *DB) Bytes() []byte {
	out := make([]byte, 0, len(d.pages)*d.PageSize)
	for i, p := range d.pages {
		if p == nil {
			panic(fmt.Sprintf("testdb: page %d never set", i+1))
		}
		out = append(out, p...)
	}
	hdr := out[:format.FileHeaderSize]
	copy(hdr, format.Magic)
	ps := d.PageSize
	if ps == format.MaxPageSize {
		ps = 1
	}
	binary.BigEndian.PutUint16(hdr[format.HdrOffPageSize:], uint16(ps))
	hdr[format.HdrOffWriteVersion] = 1
	hdr[format.HdrOffReadVersion] = 1
	binary.BigEndian.PutUint32(hdr[format.HdrOffPageCount:], uint32(len(d.pages)))
	binary.BigEndian.PutUint32(hdr[format.HdrOffTextEncoding:], uint32(format.EncUTF8))
	return out
}

// EncodeValues builds a record image: varint header length, serial types,
// then the payload bytes.
func EncodeValues(vals ...record.Value) []byte {
	var types []byte
	var payload []byte
	for _, v := range vals {
		switch v.Type {
		case record.TypeNull:
			types = format.PutVarint(types, 0)
		case record.TypeInteger:
			switch {
			case v.Int == 0:
				types = format.PutVarint(types, uint64(record.SerialZero))
			case v.Int == 1:
				types = format.PutVarint(types, uint64(record.SerialOne))
			default:
				st, width := intSerial(v.Int)
				types = format.PutVarint(types, uint64(st))
				payload = appendBeInt(payload, v.Int, width)
			}
		case record.TypeFloat:
			types = format.PutVarint(types, uint64(record.SerialFloat64))
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], math.Float64bits(v.Float))
			payload = append(payload, b[:]...)
		case record.TypeText:
			types = format.PutVarint(types, uint64(len(v.Text))*2+13)
			payload = append(payload, v.Text...)
		case record.TypeBlob:
			types = format.PutVarint(types, uint64(len(v.Blob))*2+12)
			payload = append(payload, v.Blob...)
		}
	}
	// The header length varint counts itself; one byte is enough for any
	// fixture this package builds.
	hdrLen := len(types) + 1
	if hdrLen > 0x7f {
		panic("testdb: record header too large")
	}
	out := append([]byte{byte(hdrLen)}, types...)
	return append(out, payload...)
}

func intSerial(v int64) (record.SerialType, int) {
	switch {
	case v >= -0x80 && v < 0x80:
		return record.SerialInt8, 1
	case v >= -0x8000 && v < 0x8000:
		return record.SerialInt16, 2
	case v >= -0x800000 && v < 0x800000:
		return record.SerialInt24, 3
	case v >= -0x80000000 && v < 0x80000000:
		return record.SerialInt32, 4
	case v >= -0x800000000000 && v < 0x800000000000:
		return record.SerialInt48, 6
	}
	return record.SerialInt64, 8
}

func appendBeInt(buf []byte, v int64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		buf = append(buf, byte(uint64(v)>>uint(8*i)))
	}
	return buf
}

// TableLeafCell encodes a leaf table cell whose payload fits locally.
func TableLeafCell(rowid int64, payload []byte) []byte {
	out := format.PutVarint(nil, uint64(len(payload)))
	out = format.PutVarint(out, uint64(rowid))
	return append(out, payload...)
}

// TableLeafCellSpill encodes a leaf table cell holding only local bytes of
// a larger payload, followed by the first overflow page pointer.
func TableLeafCellSpill(rowid int64, total int, local []byte, overflow uint32) []byte {
	out := format.PutVarint(nil, uint64(total))
	out = format.PutVarint(out, uint64(rowid))
	out = append(out, local...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], overflow)
	return append(out, b[:]...)
}

// TableInteriorCell encodes an interior table cell.
func TableInteriorCell(child uint32, maxRowid int64) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], child)
	return format.PutVarint(b[:], uint64(maxRowid))
}

// IndexCell encodes an index cell; child == 0 builds the leaf form.
func IndexCell(child uint32, payload []byte) []byte {
	var out []byte
	if child != 0 {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], child)
		out = append(out, b[:]...)
	}
	out = format.PutVarint(out, uint64(len(payload)))
	return append(out, payload...)
}

// Page lays out a B-tree page: header at hdrOff (100 for page 1, else 0),
// cell pointer array in order, cell content packed at the page tail.
// right is the rightmost child for interior types and ignored for leaves.
func Page(pageSize, hdrOff int, typ format.PageType, right uint32, cells [][]byte) []byte {
	p := make([]byte, pageSize)
	p[hdrOff+format.PageOffType] = byte(typ)
	binary.BigEndian.PutUint16(p[hdrOff+format.PageOffNumCells:], uint16(len(cells)))

	hdrSize := format.PageHeaderSizeLeaf
	if !typ.IsLeaf() {
		hdrSize = format.PageHeaderSizeInterior
		binary.BigEndian.PutUint32(p[hdrOff+format.PageOffRightChild:], right)
	}

	ptr := hdrOff + hdrSize
	content := pageSize
	for _, cell := range cells {
		content -= len(cell)
		copy(p[content:], cell)
		binary.BigEndian.PutUint16(p[ptr:], uint16(content))
		ptr += format.CellPtrSize
	}
	binary.BigEndian.PutUint16(p[hdrOff+format.PageOffCellStart:], uint16(content))
	return p
}

// OverflowPage builds one overflow page: 4-byte next pointer, then chunk.
func OverflowPage(pageSize int, next uint32, chunk []byte) []byte {
	p := make([]byte, pageSize)
	binary.BigEndian.PutUint32(p, next)
	copy(p[4:], chunk)
	return p
}

// SplitLocal computes how many bytes of a payload of length total stay on
// a table leaf with the given usable page size, mirroring the format's
// embedded-payload rule. Kept independent of the reader's implementation
// so fixtures cross-check it.
func SplitLocal(total, usable int) int {
	maxLocal := usable - 35
	if total <= maxLocal {
		return total
	}
	minLocal := (usable-12)*32/255 - 23
	k := minLocal + (total-minLocal)%(usable-4)
	if k <= maxLocal {
		return k
	}
	return minLocal
}

// SchemaRow encodes one schema-table record (type, name, tbl_name,
// rootpage, sql).
func SchemaRow(objType, name, tblName string, rootPage int64, sql string) []byte {
	return EncodeValues(
		record.Text(objType),
		record.Text(name),
		record.Text(tblName),
		record.Integer(rootPage),
		record.Text(sql),
	)
}
