// Package gosqlitefile provides a from-scratch, read-only reader for the
// SQLite database file format.
//
// The library is organized by concern:
//
// Format primitives:
//   - format: constants, big-endian helpers, the varint codec and the
//     decode error taxonomy
//
// Page structure:
//   - page: database file header, page reader, B-tree page headers and
//     cell pointer arrays
//
// Row decoding:
//   - record: serial types, typed values and the record decoder
//   - btree: cell parsing, overflow chains and the lazy B-tree cursor
//
// Schema and queries:
//   - schema: the catalog bootstrapped from the database's own schema
//     table, plus CREATE TABLE parsing
//   - query: a small executor (count, select, filter) and the WHERE
//     expression language
//
// Basic usage:
//
//	reader, _ := page.Open("app.db")
//	cat, _ := schema.Build(reader)
//
//	exec := query.New(reader, cat)
//	n, _ := exec.Count("apples")
//	res, _ := exec.Select("apples", []string{"name"}, nil, 0)
//
// Everything is read-only: page slices are borrowed views of the file
// image and no component mutates them.
package gosqlitefile
