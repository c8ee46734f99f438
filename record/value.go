// value.go - Typed column values
package record

import (
	"fmt"
	"strconv"
)

// ValueType is the logical type of a decoded column value.
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeInteger
	TypeFloat
	TypeText
	TypeBlob
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	}
	return "unknown"
}

// Value is one decoded column: a tagged union of the five storage classes.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Text  string
	Blob  []byte
}

func Null() Value            { return Value{Type: TypeNull} }
func Integer(v int64) Value  { return Value{Type: TypeInteger, Int: v} }
func Float(v float64) Value  { return Value{Type: TypeFloat, Float: v} }
func Text(s string) Value    { return Value{Type: TypeText, Text: s} }
func Blob(b []byte) Value    { return Value{Type: TypeBlob, Blob: b} }
func (v Value) IsNull() bool { return v.Type == TypeNull }

// String renders the value the way the CLI prints a cell.
func (v Value) String() string {
	switch v.Type {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeText:
		return v.Text
	case TypeBlob:
		return fmt.Sprintf("x'%x'", v.Blob)
	}
	return "?"
}
