// Package value provides the document value model shared by every tinyql
// package.
//
// A document is one of:
//
//	nil | bool | string | number | []any | map[string]any
//
// Numbers are carried as json.Number after Decode or Normalize, but every
// helper in this package also accepts float64 and the Go integer types so
// that callers can hand in values they built themselves.
//
// The package imports nothing internal. Deep equality, ordering, length and
// fragment containment live here so that the predicate primitives and the
// structural loader agree on what "the same value" means.
//
// Canonical encoding follows RFC 8785 ordering (UTF-16 code units) with NFC
// normalized strings; it is used wherever byte-identical output matters:
// the published schema and compile-cache keys.
package value
