// endian.go - Big-endian byte reading utilities
package format

import (
	"encoding/binary"
	"fmt"
)

func Be16(b []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(b) {
		return 0, fmt.Errorf("Be16 at %d: %w", off, ErrShortRead)
	}
	return binary.BigEndian.Uint16(b[off : off+2]), nil
}

func Be32(b []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(b) {
		return 0, fmt.Errorf("Be32 at %d: %w", off, ErrShortRead)
	}
	return binary.BigEndian.Uint32(b[off : off+4]), nil
}

func Be64(b []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(b) {
		return 0, fmt.Errorf("Be64 at %d: %w", off, ErrShortRead)
	}
	return binary.BigEndian.Uint64(b[off : off+8]), nil
}

// BeInt reads a big-endian two's-complement signed integer of the given
// byte width (1 through 8). The 3- and 6-byte widths are not native sizes
// and are sign-extended by hand.
func BeInt(b []byte, off, width int) (int64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("BeInt width %d unsupported", width)
	}
	if off < 0 || off+width > len(b) {
		return 0, fmt.Errorf("BeInt at %d width %d: %w", off, width, ErrShortRead)
	}
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<8 | uint64(b[off+i])
	}
	shift := uint(64 - 8*width)
	return int64(v<<shift) >> shift, nil
}
