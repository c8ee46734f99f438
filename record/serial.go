// serial.go - Serial type codes and their storage layout
package record

import (
	"fmt"

	"github.com/wilhasse/go-sqlitefile/format"
)

// SerialType is the per-column type code from a record header. It encodes
// both the logical type and, for text and blob, the payload byte length.
type SerialType uint64

const (
	SerialNull    SerialType = 0
	SerialInt8    SerialType = 1
	SerialInt16   SerialType = 2
	SerialInt24   SerialType = 3
	SerialInt32   SerialType = 4
	SerialInt48   SerialType = 5
	SerialInt64   SerialType = 6
	SerialFloat64 SerialType = 7
	SerialZero    SerialType = 8 // integer constant 0, no bytes stored
	SerialOne     SerialType = 9 // integer constant 1, no bytes stored
)

// Class is the logical storage class a serial type maps to.
type Class uint8

const (
	ClassNull Class = iota
	ClassInt
	ClassFloat
	ClassConst // literal 0 or 1, nothing stored
	ClassText
	ClassBlob
)

// Layout maps a serial type to its storage class and payload byte length.
// A single exhaustive switch over the integer ranges; types 10 and 11 are
// reserved by the format and rejected.
func (t SerialType) Layout() (Class, int, error) {
	switch t {
	case SerialNull:
		return ClassNull, 0, nil
	case SerialInt8:
		return ClassInt, 1, nil
	case SerialInt16:
		return ClassInt, 2, nil
	case SerialInt24:
		return ClassInt, 3, nil
	case SerialInt32:
		return ClassInt, 4, nil
	case SerialInt48:
		return ClassInt, 6, nil
	case SerialInt64:
		return ClassInt, 8, nil
	case SerialFloat64:
		return ClassFloat, 8, nil
	case SerialZero, SerialOne:
		return ClassConst, 0, nil
	case 10, 11:
		return ClassNull, 0, fmt.Errorf("reserved serial type %d: %w", t, format.ErrMalformedRecord)
	}
	if t&1 == 0 {
		return ClassBlob, int(t-12) / 2, nil
	}
	return ClassText, int(t-13) / 2, nil
}
