package format

import (
	"bytes"
	"errors"
	"testing"
)

func TestGetVarintKnownEncodings(t *testing.T) {
	maxEight := append(bytes.Repeat([]byte{0xff}, 7), 0x7f)
	tests := []struct {
		name  string
		input []byte
		want  uint64
		wantN int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"max one byte", []byte{0x7f}, 127, 1},
		{"min two bytes", []byte{0x81, 0x00}, 128, 2},
		{"canonical two byte example", []byte{0x81, 0x47}, 199, 2},
		{"three bytes", []byte{0x82, 0x80, 0x01}, 0x8001, 3},
		{"max eight bytes", maxEight, 1<<56 - 1, 8},
		{"full nine bytes", bytes.Repeat([]byte{0xff}, 9), ^uint64(0), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := GetVarint(tt.input, 0)
			if err != nil {
				t.Fatalf("GetVarint(% x) error: %v", tt.input, err)
			}
			if got != tt.want || n != tt.wantN {
				t.Fatalf("GetVarint(% x) = (%d, %d), want (%d, %d)", tt.input, got, n, tt.want, tt.wantN)
			}
		})
	}
}

// The canonical two-byte example must not decode to the values produced by
// reversing the byte-group order (18177) or zeroing instead of dropping
// the continuation bit (9089).
func TestGetVarintNotMisdecoded(t *testing.T) {
	got, _, err := GetVarint([]byte{0x81, 0x47}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, wrong := range []uint64{9089, 18177} {
		if got == wrong {
			t.Fatalf("decoded 0x81 0x47 to the historically buggy value %d", wrong)
		}
	}
	if got != 199 {
		t.Fatalf("decoded 0x81 0x47 to %d, want 199", got)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 199, 16383, 16384,
		1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 28,
		1<<35 - 1, 1 << 35, 1<<42 - 1, 1 << 42,
		1<<49 - 1, 1 << 49, 1<<56 - 1, 1 << 56,
		^uint64(0) - 1, ^uint64(0),
	}
	for _, v := range values {
		enc := PutVarint(nil, v)
		if len(enc) != VarintLen(v) {
			t.Errorf("value %d: encoded %d bytes, VarintLen says %d", v, len(enc), VarintLen(v))
		}
		got, n, err := GetVarint(enc, 0)
		if err != nil {
			t.Errorf("value %d: decode error: %v", v, err)
			continue
		}
		if got != v || n != len(enc) {
			t.Errorf("value %d: round-trip gave (%d, %d), want (%d, %d)", v, got, n, v, len(enc))
		}
	}
}

func TestGetVarintTruncated(t *testing.T) {
	tests := [][]byte{
		nil,
		{},
		{0x81},
		{0xff, 0xff},
		bytes.Repeat([]byte{0x80}, 8),
	}
	for _, input := range tests {
		if _, _, err := GetVarint(input, 0); !errors.Is(err, ErrTruncatedVarint) {
			t.Errorf("GetVarint(% x) error = %v, want ErrTruncatedVarint", input, err)
		}
	}
}

func TestGetVarintOffset(t *testing.T) {
	buf := []byte{0xde, 0xad, 0x81, 0x47}
	got, n, err := GetVarint(buf, 2)
	if err != nil || got != 199 || n != 2 {
		t.Fatalf("GetVarint at offset 2 = (%d, %d, %v), want (199, 2, nil)", got, n, err)
	}
	if _, _, err := GetVarint(buf, 4); !errors.Is(err, ErrTruncatedVarint) {
		t.Fatalf("GetVarint past end error = %v, want ErrTruncatedVarint", err)
	}
}

// The 9-byte form must use all 8 bits of the final byte even when that
// byte has its high bit set.
func TestNinthByteCarriesEightBits(t *testing.T) {
	enc := PutVarint(nil, 1<<56)
	if len(enc) != 9 {
		t.Fatalf("2^56 encoded in %d bytes, want 9", len(enc))
	}
	got, n, err := GetVarint(enc, 0)
	if err != nil || n != 9 || got != 1<<56 {
		t.Fatalf("decode = (%d, %d, %v), want (2^56, 9, nil)", got, n, err)
	}
}
