package page_test

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/internal/testdb"
	"github.com/wilhasse/go-sqlitefile/page"
)

func oneLeafImage(pageSize int) []byte {
	db := testdb.New(pageSize)
	db.AddPage(testdb.Page(pageSize, format.FileHeaderSize, format.PageLeafTable, 0, nil))
	return db.Bytes()
}

func TestParseHeader(t *testing.T) {
	img := oneLeafImage(512)
	h, err := page.ParseHeader(img)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.PageSize != 512 {
		t.Errorf("PageSize = %d, want 512", h.PageSize)
	}
	if h.Reserved != 0 {
		t.Errorf("Reserved = %d, want 0", h.Reserved)
	}
	if h.UsableSize() != 512 {
		t.Errorf("UsableSize = %d, want 512", h.UsableSize())
	}
	if h.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", h.PageCount)
	}
	if h.TextEncoding != format.EncUTF8 {
		t.Errorf("TextEncoding = %v, want UTF-8", h.TextEncoding)
	}
}

func TestParseHeaderPageSizeOne(t *testing.T) {
	// The on-disk value 1 stands in for 65536, which does not fit the
	// 16-bit field.
	img := oneLeafImage(format.MaxPageSize)
	if got := binary.BigEndian.Uint16(img[format.HdrOffPageSize:]); got != 1 {
		t.Fatalf("fixture encoded page size %d, want 1", got)
	}
	h, err := page.ParseHeader(img)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.PageSize != format.MaxPageSize {
		t.Errorf("PageSize = %d, want %d", h.PageSize, format.MaxPageSize)
	}
}

func TestParseHeaderRejects(t *testing.T) {
	corrupt := func(f func([]byte)) []byte {
		img := oneLeafImage(512)
		f(img)
		return img
	}
	tests := []struct {
		name string
		img  []byte
		want string
	}{
		{"bad magic", corrupt(func(b []byte) { b[0] = 'X' }), "bad magic"},
		{"page size not power of two", corrupt(func(b []byte) {
			binary.BigEndian.PutUint16(b[format.HdrOffPageSize:], 600)
		}), "bad page size"},
		{"page size too small", corrupt(func(b []byte) {
			binary.BigEndian.PutUint16(b[format.HdrOffPageSize:], 256)
		}), "bad page size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := page.ParseHeader(tt.img)
			if err == nil {
				t.Fatal("ParseHeader accepted corrupt header")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	_, err := page.ParseHeader(make([]byte, 40))
	if !errors.Is(err, format.ErrShortRead) {
		t.Errorf("short buffer error = %v, want ErrShortRead", err)
	}
}

func TestReaderPageBounds(t *testing.T) {
	db := testdb.New(512)
	db.AddPage(testdb.Page(512, format.FileHeaderSize, format.PageLeafTable, 0, nil))
	db.AddPage(testdb.Page(512, 0, format.PageLeafTable, 0, nil))
	r, err := page.NewReader(db.Bytes())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", r.PageCount())
	}
	if _, err := r.PageData(1); err != nil {
		t.Errorf("PageData(1): %v", err)
	}
	if _, err := r.PageData(2); err != nil {
		t.Errorf("PageData(2): %v", err)
	}
	for _, n := range []uint32{0, 3} {
		if _, err := r.PageData(n); !errors.Is(err, format.ErrPageOutOfRange) {
			t.Errorf("PageData(%d) error = %v, want ErrPageOutOfRange", n, err)
		}
	}
}

func TestReaderTruncatedFile(t *testing.T) {
	// In-header page count says 2 but the image holds only one full page
	// plus a fragment. The byte length wins; page 2 must be unreachable.
	db := testdb.New(512)
	db.AddPage(testdb.Page(512, format.FileHeaderSize, format.PageLeafTable, 0, nil))
	db.AddPage(testdb.Page(512, 0, format.PageLeafTable, 0, nil))
	img := db.Bytes()[:512+100]

	r, err := page.NewReader(img)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Header().PageCount != 2 {
		t.Fatalf("in-header page count = %d, want 2", r.Header().PageCount)
	}
	if r.PageCount() != 1 {
		t.Fatalf("derived PageCount = %d, want 1", r.PageCount())
	}
	if _, err := r.PageData(2); !errors.Is(err, format.ErrPageOutOfRange) {
		t.Errorf("PageData(2) error = %v, want ErrPageOutOfRange", err)
	}
}

func TestNewReaderShorterThanOnePage(t *testing.T) {
	img := oneLeafImage(512)[:300]
	if _, err := page.NewReader(img); !errors.Is(err, format.ErrShortRead) {
		t.Errorf("error = %v, want ErrShortRead", err)
	}
}
