// varint.go - SQLite variable-length integer codec
package format

import "fmt"

// GetVarint decodes a SQLite varint from b starting at off and returns the
// value and the number of bytes consumed (1..9).
//
// Each byte contributes its low 7 bits, most significant group first; the
// high bit is a continuation flag. A 9th byte, if reached, contributes all
// 8 of its bits and terminates unconditionally. Returns ErrTruncatedVarint
// (wrapped) when the window ends before a terminating byte.
func GetVarint(b []byte, off int) (uint64, int, error) {
	if off < 0 || off >= len(b) {
		return 0, 0, fmt.Errorf("varint at %d: %w", off, ErrTruncatedVarint)
	}
	var v uint64
	for i := 0; i < MaxVarintLen; i++ {
		if off+i >= len(b) {
			return 0, 0, fmt.Errorf("varint at %d: %w", off, ErrTruncatedVarint)
		}
		c := b[off+i]
		if i == MaxVarintLen-1 {
			// 9th byte carries a full 8 bits and no continuation flag.
			return v<<8 | uint64(c), MaxVarintLen, nil
		}
		v = v<<7 | uint64(c&0x7f)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("varint at %d: %w", off, ErrTruncatedVarint)
}

// PutVarint appends the varint encoding of v to buf and returns the
// extended buffer.
func PutVarint(buf []byte, v uint64) []byte {
	if v <= 0x7f {
		return append(buf, byte(v))
	}
	if v > 0x00ffffffffffffff {
		// 9-byte form: eight 7-bit groups with continuation bits, then a
		// final byte holding the low 8 bits.
		for shift := uint(57); shift >= 8; shift -= 7 {
			buf = append(buf, byte(v>>shift)&0x7f|0x80)
		}
		return append(buf, byte(v))
	}
	n := VarintLen(v)
	for i := n - 1; i >= 1; i-- {
		buf = append(buf, byte(v>>uint(7*i))&0x7f|0x80)
	}
	return append(buf, byte(v)&0x7f)
}

// VarintLen returns the number of bytes PutVarint uses to encode v.
func VarintLen(v uint64) int {
	if v > 0x00ffffffffffffff {
		return MaxVarintLen
	}
	n := 1
	for v >>= 7; v > 0; v >>= 7 {
		n++
	}
	return n
}
