// overflow.go - Overflow page chain reassembly
package btree

import (
	"fmt"

	"github.com/wilhasse/go-sqlitefile/format"
)

// Payload returns the full payload of c. When nothing spilled, the local
// view is returned as-is; otherwise local and overflow bytes are copied
// into a fresh buffer of the declared size.
//
// Each overflow page starts with a 4-byte big-endian pointer to the next
// overflow page (0 terminates the chain); the rest of the usable area is
// payload. The chain is bounded by the file's page count so a corrupt
// circular chain fails instead of looping.
func (w *Walker) Payload(c *Cell) ([]byte, error) {
	if c.Overflow == 0 {
		if int64(len(c.Local)) != c.PayloadSize {
			return nil, fmt.Errorf("payload: declared %d, local %d: %w",
				c.PayloadSize, len(c.Local), format.ErrMalformedRecord)
		}
		return c.Local, nil
	}

	out := make([]byte, 0, c.PayloadSize)
	out = append(out, c.Local...)
	perPage := w.pages.UsableSize() - 4

	next := c.Overflow
	for steps := uint32(0); next != 0; steps++ {
		if steps >= w.pages.PageCount() {
			return nil, fmt.Errorf("overflow chain from page %d exceeds %d pages: %w",
				c.Overflow, w.pages.PageCount(), format.ErrMalformedRecord)
		}
		data, err := w.pages.PageData(next)
		if err != nil {
			return nil, fmt.Errorf("overflow page %d: %w", next, err)
		}
		ptr, _ := format.Be32(data, 0)

		need := int(c.PayloadSize) - len(out)
		if need <= 0 {
			return nil, fmt.Errorf("overflow page %d past declared payload end: %w", next, format.ErrMalformedRecord)
		}
		take := perPage
		if take > need {
			take = need
		}
		out = append(out, data[4:4+take]...)
		next = ptr
	}

	if int64(len(out)) != c.PayloadSize {
		return nil, fmt.Errorf("overflow chain ended with %d of %d bytes: %w",
			len(out), c.PayloadSize, format.ErrMalformedRecord)
	}
	return out, nil
}
