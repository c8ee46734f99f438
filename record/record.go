// record.go - Record (row payload) decoding
package record

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/wilhasse/go-sqlitefile/format"
)

// Record is one decoded row payload: the serial type of every column and
// its decoded value, in header order.
type Record struct {
	SerialTypes []SerialType
	Values      []Value
	HeaderLen   int // bytes of the record header, including its own varint
	Size        int // total bytes of the record (header + payload)
}

func (r *Record) NumColumns() int { return len(r.Values) }

// Column returns column i, or a NULL value when i is out of range. Rows of
// a table created before a column was added legitimately have fewer stored
// columns than the schema declares.
func (r *Record) Column(i int) Value {
	if i < 0 || i >= len(r.Values) {
		return Null()
	}
	return r.Values[i]
}

// Decode parses a record beginning at off in buf. It returns the record and
// the number of bytes consumed.
//
// Layout: varint header length, then one varint serial type per column
// (until exactly headerLen bytes of header are consumed), then each
// column's payload bytes back-to-back in header order.
func Decode(buf []byte, off int) (*Record, int, error) {
	headerLen, n, err := format.GetVarint(buf, off)
	if err != nil {
		return nil, 0, err
	}
	// Compare unsigned; a header length past int range would wrap negative
	// and slip through a signed check.
	if headerLen < uint64(n) || headerLen > uint64(len(buf)-off) {
		return nil, 0, fmt.Errorf("record at %d: header length %d: %w", off, headerLen, format.ErrMalformedRecord)
	}
	headerEnd := off + int(headerLen)

	var types []SerialType
	pos := off + n
	for pos < headerEnd {
		st, sn, err := format.GetVarint(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		if pos+sn > headerEnd {
			return nil, 0, fmt.Errorf("record at %d: serial type overruns header: %w", off, format.ErrMalformedRecord)
		}
		types = append(types, SerialType(st))
		pos += sn
	}

	rec := &Record{
		SerialTypes: types,
		Values:      make([]Value, 0, len(types)),
		HeaderLen:   int(headerLen),
	}

	pos = headerEnd
	for _, st := range types {
		class, size, err := st.Layout()
		if err != nil {
			return nil, 0, err
		}
		if pos+size > len(buf) {
			return nil, 0, fmt.Errorf("record at %d: payload overruns buffer (%d+%d > %d): %w",
				off, pos, size, len(buf), format.ErrMalformedRecord)
		}
		v, err := decodeColumn(st, class, buf[pos:pos+size])
		if err != nil {
			return nil, 0, fmt.Errorf("record at %d: %w", off, err)
		}
		rec.Values = append(rec.Values, v)
		pos += size
	}
	rec.Size = pos - off
	return rec, rec.Size, nil
}

func decodeColumn(st SerialType, class Class, payload []byte) (Value, error) {
	switch class {
	case ClassNull:
		return Null(), nil
	case ClassConst:
		if st == SerialOne {
			return Integer(1), nil
		}
		return Integer(0), nil
	case ClassInt:
		v, err := format.BeInt(payload, 0, len(payload))
		if err != nil {
			return Null(), err
		}
		return Integer(v), nil
	case ClassFloat:
		bits := binary.BigEndian.Uint64(payload)
		return Float(math.Float64frombits(bits)), nil
	case ClassText:
		if !utf8.Valid(payload) {
			return Null(), fmt.Errorf("text column is not valid UTF-8: %w", format.ErrMalformedRecord)
		}
		return Text(string(payload)), nil
	case ClassBlob:
		return Blob(payload), nil
	}
	return Null(), fmt.Errorf("serial type %d: %w", st, format.ErrMalformedRecord)
}
