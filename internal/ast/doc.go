// Package ast defines the query grammar and its typed syntax tree.
//
// Every node kind is registered into one process-wide nodespec.Registry,
// built on first use and read-only afterwards. The same registry produces
// the published JSON Schema (Schema) and parses raw queries into nodes
// (Load), so the grammar and its schema cannot drift apart.
//
// The grammar has two tiers:
//
//	TopLevel = TopLevelAnd | TopLevelOr | TopLevelNot | Fragment | Field
//	Verb     = Exists | Matches | Search | Fragment | Types | Any | All |
//	           Length | Enum | Eq | Ne | Lt | Le | Gt | Ge | Keys |
//	           Values | And | Or | Not | Field | DefaultEq | DefaultSearch
//
// TopLevel forbids bare literals and comparison operators at the root of a
// query: {"$gt": 12} is rejected, {"age": {"$gt": 12}} is accepted.
//
// Verb alternatives are tried in the listed order and the first one that
// fits wins. DefaultEq (a bare string, number or boolean) and
// DefaultSearch (a bare {"$re": ...}) come last, so they only apply when
// no explicit operator fits.
//
// Node is a sealed interface: only types in this package implement it,
// which keeps type switches in the renderer exhaustive.
package ast
