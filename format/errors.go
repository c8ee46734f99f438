// errors.go - Decode error taxonomy
package format

import "errors"

// Every structural decode failure wraps one of these sentinels, together
// with the page number and byte offset at which decoding stopped. Errors
// are fatal to the operation in progress; nothing is silently corrected.
var (
	ErrShortRead          = errors.New("short read")
	ErrTruncatedVarint    = errors.New("truncated varint")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrCorruptPageType    = errors.New("corrupt page type")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrSchemaTableMissing = errors.New("schema table missing")
)
