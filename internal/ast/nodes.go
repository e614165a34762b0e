package ast

import (
	"github.com/roach88/tinyql/internal/value"
)

// Node is one parsed query node.
//
// This is a sealed interface - only types in this package implement it.
// Every node keeps the raw JSON value it was loaded from.
type Node interface {
	Raw() any
	node() // Marker method - seals interface to this package
}

type base struct {
	raw any
}

func (b base) Raw() any { return b.raw }
func (base) node()      {}

// String is a string literal.
type String struct {
	base
	Value string
}

// Boolean is a boolean literal.
type Boolean struct {
	base
	Value bool
}

// Number is a numeric literal, usually a json.Number.
type Number struct {
	base
	Value any
}

// Regex is a regular expression literal: {"$re": "pattern"}.
type Regex struct {
	base
	Pattern string
}

// DataList is a literal list of arbitrary values.
type DataList struct {
	base
	Items []any
}

// Exists tests presence of the current field, or absence when Want is
// false.
type Exists struct {
	base
	Want bool
}

// Matches tests that the whole string value matches Pattern.
type Matches struct {
	base
	Pattern string
}

// Search tests that some substring of the string value matches Pattern.
type Search struct {
	base
	Pattern string
}

// Fragment tests that the value is a mapping containing every pair of
// Fragment.
type Fragment struct {
	base
	Fragment map[string]any
}

// Types tests the runtime datatype of the value.
type Types struct {
	base
	Kinds []value.Kind
}

// Quantifier distinguishes All from Any.
type Quantifier int

const (
	QuantAll Quantifier = iota
	QuantAny
)

// String returns the operator keyword.
func (q Quantifier) String() string {
	if q == QuantAny {
		return "$any"
	}
	return "$all"
}

// Quantify is $all or $any. Exactly one of Verb and List is set: Verb is
// tested against each element of the list-valued field, List is a literal
// membership set.
type Quantify struct {
	base
	Quantifier Quantifier
	Verb       Node
	List       []any
}

// Length applies Verb to the length of the value.
type Length struct {
	base
	Verb Node
}

// Enum tests that the value equals one of Values.
type Enum struct {
	base
	Values []any
}

// CompareOp is a comparison operator keyword.
type CompareOp string

const (
	OpEq CompareOp = "$eq"
	OpNe CompareOp = "$ne"
	OpLt CompareOp = "$lt"
	OpLe CompareOp = "$le"
	OpGt CompareOp = "$gt"
	OpGe CompareOp = "$ge"
)

// Compare compares the value against a literal.
type Compare struct {
	base
	Op    CompareOp
	Value any
}

// Keys applies Verb to the list of every key of the value, descending
// into nested mappings.
type Keys struct {
	base
	Verb Node
}

// Values applies Verb to the list of every leaf value, descending into
// nested lists and mappings.
type Values struct {
	base
	Verb Node
}

// And is a conjunction. An empty And is always true.
type And struct {
	base
	Children []Node
}

// Or is a disjunction. An empty Or is always false.
type Or struct {
	base
	Children []Node
}

// Not negates its child.
type Not struct {
	base
	Child Node
}

// FieldEntry selects Path relative to the current value and applies Verb
// there.
type FieldEntry struct {
	Path FieldPath
	Verb Node
}

// Field is a set of field selections, all of which must hold. Entries are
// sorted by path.
type Field struct {
	base
	Entries []FieldEntry
}

// DefaultEq is a bare scalar in verb position: equality with Value.
type DefaultEq struct {
	base
	Value any
}

// DefaultSearch is a bare {"$re": ...} in verb position: substring search.
type DefaultSearch struct {
	base
	Pattern string
}
