// consts.go - SQLite file format sizes and constants
package format

// Magic is the 16-byte header string at offset 0 of every database file.
const Magic = "SQLite format 3\x00"

const (
	FileHeaderSize = 100 // database header on page 1
	MinPageSize    = 512
	MaxPageSize    = 65536

	// B-tree page header sizes. Interior pages carry an extra 4-byte
	// rightmost-child pointer after the 8 common bytes.
	PageHeaderSizeLeaf     = 8
	PageHeaderSizeInterior = 12

	CellPtrSize = 2 // one entry of the cell pointer array

	MaxVarintLen = 9
)

// B-tree page header field offsets, relative to the header start
// (byte 0 of the page, or byte 100 on page 1).
const (
	PageOffType       = 0 // 1 byte
	PageOffFreeblock  = 1 // 2 bytes
	PageOffNumCells   = 3 // 2 bytes
	PageOffCellStart  = 5 // 2 bytes
	PageOffFragmented = 7 // 1 byte
	PageOffRightChild = 8 // 4 bytes, interior only
)

// Database header field offsets.
const (
	HdrOffPageSize      = 16 // 2 bytes, big-endian; 1 encodes 65536
	HdrOffWriteVersion  = 18 // 1 byte
	HdrOffReadVersion   = 19 // 1 byte
	HdrOffReserved      = 20 // 1 byte, reserved space at the end of each page
	HdrOffChangeCounter = 24 // 4 bytes
	HdrOffPageCount     = 28 // 4 bytes, in-header database size in pages
	HdrOffFreelistHead  = 32 // 4 bytes
	HdrOffFreelistCount = 36 // 4 bytes
	HdrOffSchemaCookie  = 40 // 4 bytes
	HdrOffTextEncoding  = 56 // 4 bytes: 1=UTF-8, 2=UTF-16le, 3=UTF-16be
	HdrOffVersionValid  = 92 // 4 bytes
)

// PageType is the first byte of a B-tree page header.
type PageType uint8

const (
	PageInteriorIndex PageType = 0x02
	PageInteriorTable PageType = 0x05
	PageLeafIndex     PageType = 0x0a
	PageLeafTable     PageType = 0x0d
)

func (t PageType) IsLeaf() bool  { return t == PageLeafTable || t == PageLeafIndex }
func (t PageType) IsTable() bool { return t == PageLeafTable || t == PageInteriorTable }
func (t PageType) IsIndex() bool { return t == PageLeafIndex || t == PageInteriorIndex }

// Valid reports whether t is one of the four B-tree page types.
func (t PageType) Valid() bool {
	switch t {
	case PageInteriorIndex, PageInteriorTable, PageLeafIndex, PageLeafTable:
		return true
	}
	return false
}

func (t PageType) String() string {
	switch t {
	case PageInteriorIndex:
		return "interior index"
	case PageInteriorTable:
		return "interior table"
	case PageLeafIndex:
		return "leaf index"
	case PageLeafTable:
		return "leaf table"
	}
	return "invalid"
}

// TextEncoding is the database text encoding declared in the file header.
type TextEncoding uint32

const (
	EncUTF8    TextEncoding = 1
	EncUTF16le TextEncoding = 2
	EncUTF16be TextEncoding = 3
)

func (e TextEncoding) String() string {
	switch e {
	case EncUTF8:
		return "UTF-8"
	case EncUTF16le:
		return "UTF-16le"
	case EncUTF16be:
		return "UTF-16be"
	}
	return "unknown"
}

// SchemaRootPage is the page holding the root of the sqlite_master B-tree.
// It shares page 1 with the database file header.
const SchemaRootPage = 1
