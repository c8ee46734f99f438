// exports.go - Re-exports for main package API
package gosqlitefile

import (
	"github.com/wilhasse/go-sqlitefile/btree"
	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/page"
	"github.com/wilhasse/go-sqlitefile/query"
	"github.com/wilhasse/go-sqlitefile/record"
	"github.com/wilhasse/go-sqlitefile/schema"
)

// Re-export types from the format package
type (
	PageType     = format.PageType
	TextEncoding = format.TextEncoding
)

// Re-export constants from the format package
const (
	FileHeaderSize = format.FileHeaderSize
	SchemaRootPage = format.SchemaRootPage

	PageInteriorIndex = format.PageInteriorIndex
	PageInteriorTable = format.PageInteriorTable
	PageLeafIndex     = format.PageLeafIndex
	PageLeafTable     = format.PageLeafTable
)

// Re-export the decode error taxonomy
var (
	ErrShortRead          = format.ErrShortRead
	ErrTruncatedVarint    = format.ErrTruncatedVarint
	ErrMalformedRecord    = format.ErrMalformedRecord
	ErrCorruptPageType    = format.ErrCorruptPageType
	ErrPageOutOfRange     = format.ErrPageOutOfRange
	ErrSchemaTableMissing = format.ErrSchemaTableMissing
)

// Re-export varint codec functions
var (
	GetVarint = format.GetVarint
	PutVarint = format.PutVarint
	VarintLen = format.VarintLen
)

// Re-export types from the page package
type (
	Header    = page.Header
	Reader    = page.Reader
	BTreePage = page.BTreePage
)

// Re-export functions from the page package
var (
	Open        = page.Open
	NewReader   = page.NewReader
	ParseHeader = page.ParseHeader
)

// Re-export types from the record package
type (
	Record     = record.Record
	Value      = record.Value
	SerialType = record.SerialType
)

var DecodeRecord = record.Decode

// Re-export types from the btree package
type (
	Walker = btree.Walker
	Cursor = btree.Cursor
)

var NewWalker = btree.NewWalker

// Re-export types from the schema package
type (
	Catalog     = schema.Catalog
	SchemaEntry = schema.Entry
	TableDef    = schema.TableDef
)

var (
	BuildCatalog  = schema.Build
	ParseTableDef = schema.ParseTableDef
)

// Re-export the query surface
type (
	Executor = query.Executor
	Result   = query.Result
)

var (
	NewExecutor = query.New
	ParseWhere  = query.ParseWhere
)
