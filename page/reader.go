// reader.go - Page reader over an in-memory database image
package page

import (
	"fmt"
	"os"

	"github.com/wilhasse/go-sqlitefile/format"
)

// Reader hands out read-only views of fixed-size pages from a database file
// held entirely in memory. Page numbers are 1-based; every returned slice
// is borrowed from the underlying buffer, never copied.
type Reader struct {
	data []byte
	hdr  *Header
}

// Open reads the whole file at path and wraps it in a Reader.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewReader(data)
}

// NewReader parses the file header and validates the buffer length.
func NewReader(data []byte) (*Reader, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < hdr.PageSize {
		return nil, fmt.Errorf("file shorter than one page (%d < %d): %w",
			len(data), hdr.PageSize, format.ErrShortRead)
	}
	return &Reader{data: data, hdr: hdr}, nil
}

func (r *Reader) Header() *Header { return r.hdr }

// PageCount is derived from the byte length, not the in-header count, so a
// truncated file bounds every read.
func (r *Reader) PageCount() uint32 { return uint32(len(r.data) / r.hdr.PageSize) }

func (r *Reader) PageSize() int   { return r.hdr.PageSize }
func (r *Reader) UsableSize() int { return r.hdr.UsableSize() }

// PageData returns the raw bytes of page pageNo as a borrowed view.
func (r *Reader) PageData(pageNo uint32) ([]byte, error) {
	if pageNo < 1 || pageNo > r.PageCount() {
		return nil, fmt.Errorf("page %d of %d: %w", pageNo, r.PageCount(), format.ErrPageOutOfRange)
	}
	off := int(pageNo-1) * r.hdr.PageSize
	return r.data[off : off+r.hdr.PageSize], nil
}

// ReadPage reads page pageNo and parses its B-tree page header.
func (r *Reader) ReadPage(pageNo uint32) (*BTreePage, error) {
	data, err := r.PageData(pageNo)
	if err != nil {
		return nil, err
	}
	return ParseBTreePage(pageNo, data)
}
