// header.go - Database file header parsing
package page

import (
	"bytes"
	"fmt"

	"github.com/wilhasse/go-sqlitefile/format"
)

// Header is the 100-byte database header at the start of the file. Page 1's
// B-tree content begins immediately after it.
type Header struct {
	PageSize      int // decoded: the on-disk value 1 means 65536
	WriteVersion  uint8
	ReadVersion   uint8
	Reserved      int // unused bytes at the end of every page
	ChangeCounter uint32
	PageCount     uint32 // in-header size; trust the file length instead
	FreelistHead  uint32
	FreelistCount uint32
	SchemaCookie  uint32
	TextEncoding  format.TextEncoding
}

// ParseHeader parses and validates the database header at the start of b.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < format.FileHeaderSize {
		return nil, fmt.Errorf("file header: %d bytes: %w", len(b), format.ErrShortRead)
	}
	if !bytes.Equal(b[:len(format.Magic)], []byte(format.Magic)) {
		return nil, fmt.Errorf("bad magic %q", b[:len(format.Magic)])
	}

	raw, _ := format.Be16(b, format.HdrOffPageSize)
	pageSize := int(raw)
	if pageSize == 1 {
		pageSize = format.MaxPageSize
	}
	if pageSize < format.MinPageSize || pageSize > format.MaxPageSize || pageSize&(pageSize-1) != 0 {
		return nil, fmt.Errorf("bad page size %d", pageSize)
	}

	change, _ := format.Be32(b, format.HdrOffChangeCounter)
	count, _ := format.Be32(b, format.HdrOffPageCount)
	freeHead, _ := format.Be32(b, format.HdrOffFreelistHead)
	freeCount, _ := format.Be32(b, format.HdrOffFreelistCount)
	cookie, _ := format.Be32(b, format.HdrOffSchemaCookie)
	enc, _ := format.Be32(b, format.HdrOffTextEncoding)

	h := &Header{
		PageSize:      pageSize,
		WriteVersion:  b[format.HdrOffWriteVersion],
		ReadVersion:   b[format.HdrOffReadVersion],
		Reserved:      int(b[format.HdrOffReserved]),
		ChangeCounter: change,
		PageCount:     count,
		FreelistHead:  freeHead,
		FreelistCount: freeCount,
		SchemaCookie:  cookie,
		TextEncoding:  format.TextEncoding(enc),
	}
	if h.Reserved >= pageSize {
		return nil, fmt.Errorf("reserved space %d exceeds page size %d", h.Reserved, pageSize)
	}
	return h, nil
}

// UsableSize is the portion of each page available to B-tree content.
func (h *Header) UsableSize() int { return h.PageSize - h.Reserved }
