package ast

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/tinyql/internal/nodespec"
	"github.com/roach88/tinyql/internal/value"
)

// Kind names. They double as the $defs keys of the published schema.
const (
	KindTopLevel = "TopLevel"
	KindVerb     = "Verb"
)

// TypeNames are the datatype names accepted by $types.
var TypeNames = []string{"string", "boolean", "number", "array", "object"}

// verbOrder is the priority list of the Verb union.
var verbOrder = []string{
	"Exists", "Matches", "Search", "Fragment", "Types", "Any", "All",
	"Length", "Enum", "Eq", "Ne", "Lt", "Le", "Gt", "Ge", "Keys", "Values",
	"And", "Or", "Not", "Field", "DefaultEq", "DefaultSearch",
}

var topLevelOrder = []string{"TopLevelAnd", "TopLevelOr", "TopLevelNot", "Fragment", "Field"}

var (
	grammarOnce sync.Once
	grammar     *nodespec.Registry
)

// Grammar returns the process-wide registry of node kinds, building and
// sealing it on first use.
//
// A defect in the grammar is a programming error: Grammar panics with the
// *nodespec.InternalError.
func Grammar() *nodespec.Registry {
	grammarOnce.Do(func() {
		reg := nodespec.NewRegistry()
		reg.MustRegister(kinds()...)
		if err := reg.Seal(); err != nil {
			panic(err)
		}
		grammar = reg
	})
	return grammar
}

// Load parses raw as the named kind.
func Load(kind string, raw any) (Node, error) {
	v, err := Grammar().Load(kind, raw)
	if err != nil {
		return nil, err
	}
	n, ok := v.(Node)
	if !ok {
		return nil, &nodespec.InternalError{Kind: kind, Message: fmt.Sprintf("constructor returned %T", v)}
	}
	return n, nil
}

// Schema returns the synthesized schema of the named kind.
func Schema(kind string) (*nodespec.Schema, error) {
	return Grammar().Synthesize(kind)
}

func refs(names []string) []*nodespec.Spec {
	out := make([]*nodespec.Spec, len(names))
	for i, name := range names {
		out[i] = nodespec.Ref(name)
	}
	return out
}

func listOf(item *nodespec.Spec) *nodespec.Spec {
	return &nodespec.Spec{Type: "array", Items: item, AdditionalItems: nodespec.Forbidden()}
}

func kinds() []nodespec.Kind {
	typeEnum := make([]any, len(TypeNames))
	for i, name := range TypeNames {
		typeEnum[i] = name
	}
	regexOrString := nodespec.AnyOf(nodespec.Ref("Regex"), nodespec.Ref("Pattern"))
	verbOrList := nodespec.AnyOf(nodespec.Ref(KindVerb), nodespec.Ref("DataList"))

	return []nodespec.Kind{
		// literals
		{Name: "String", Spec: &nodespec.Spec{Type: "string"}, New: newString},
		{Name: "Boolean", Spec: &nodespec.Spec{Type: "boolean"}, New: newBoolean},
		{Name: "Number", Spec: &nodespec.Spec{Type: "number"}, New: newNumber},
		{Name: "Pattern", Spec: &nodespec.Spec{Type: "string", Format: "regex"}, New: newString},
		{Name: "Regex", Spec: nodespec.Object("$re", nodespec.Ref("Pattern")), New: newRegex},
		{Name: "DataList", Spec: &nodespec.Spec{Type: "array"}, New: newDataList},

		// verbs
		{Name: "Exists", Spec: nodespec.Object("$exists", nodespec.Ref("Boolean")), New: newExists},
		{Name: "Matches", Spec: nodespec.Object("$matches", regexOrString), New: newMatches},
		{Name: "Search", Spec: nodespec.Object("$search", regexOrString), New: newSearch},
		{Name: "Fragment", Spec: nodespec.Object("$fragment", &nodespec.Spec{Type: "object"}), New: newFragment},
		{Name: "Types", Spec: nodespec.Object("$types", listOf(&nodespec.Spec{Type: "string", Enum: typeEnum})), New: newTypes},
		{Name: "Any", Spec: nodespec.Object("$any", verbOrList), New: newQuantify(QuantAny)},
		{Name: "All", Spec: nodespec.Object("$all", verbOrList), New: newQuantify(QuantAll)},
		{Name: "Length", Spec: nodespec.Object("$length", nodespec.Ref(KindVerb)), New: newLength},
		{Name: "Enum", Spec: nodespec.Object("$enum", nodespec.Ref("DataList")), New: newEnum},
		{Name: "Eq", Spec: nodespec.Object(string(OpEq), nodespec.Anything()), New: newCompare(OpEq)},
		{Name: "Ne", Spec: nodespec.Object(string(OpNe), nodespec.Anything()), New: newCompare(OpNe)},
		{Name: "Lt", Spec: nodespec.Object(string(OpLt), nodespec.Anything()), New: newCompare(OpLt)},
		{Name: "Le", Spec: nodespec.Object(string(OpLe), nodespec.Anything()), New: newCompare(OpLe)},
		{Name: "Gt", Spec: nodespec.Object(string(OpGt), nodespec.Anything()), New: newCompare(OpGt)},
		{Name: "Ge", Spec: nodespec.Object(string(OpGe), nodespec.Anything()), New: newCompare(OpGe)},
		{Name: "Keys", Spec: nodespec.Object("$keys", nodespec.Ref(KindVerb)), New: newKeys},
		{Name: "Values", Spec: nodespec.Object("$values", nodespec.Ref(KindVerb)), New: newValues},
		{Name: "And", Spec: nodespec.Object("$and", listOf(nodespec.Ref(KindVerb))), New: newAnd("$and")},
		{Name: "Or", Spec: nodespec.Object("$or", listOf(nodespec.Ref(KindVerb))), New: newOr("$or")},
		{Name: "Not", Spec: nodespec.Object("$not", nodespec.Ref(KindVerb)), New: newNot("$not")},
		{Name: "Field", Spec: &nodespec.Spec{
			Type:                 "object",
			PatternProperties:    []nodespec.Pattern{{Regex: FieldKeyPattern, Spec: nodespec.Ref(KindVerb)}},
			AdditionalProperties: nodespec.Forbidden(),
		}, New: newField},
		{Name: "DefaultEq", Spec: nodespec.AnyOf(refs([]string{"Number", "Boolean", "String"})...), New: newDefaultEq},
		{Name: "DefaultSearch", Spec: nodespec.Ref("Regex"), New: newDefaultSearch},
		{Name: KindVerb, Spec: nodespec.AnyOf(refs(verbOrder)...), New: unwrap},

		// top level
		{Name: "TopLevelAnd", Spec: nodespec.Object("$and", listOf(nodespec.Ref(KindTopLevel))), New: newAnd("$and")},
		{Name: "TopLevelOr", Spec: nodespec.Object("$or", listOf(nodespec.Ref(KindTopLevel))), New: newOr("$or")},
		{Name: "TopLevelNot", Spec: nodespec.Object("$not", nodespec.Ref(KindTopLevel)), New: newNot("$not")},
		{Name: KindTopLevel, Spec: nodespec.AnyOf(refs(topLevelOrder)...), New: unwrap},
	}
}

// prop returns the parsed value of a required operator property.
func prop[T any](parsed any, key string) (T, error) {
	var zero T
	m, ok := parsed.(map[string]any)
	if !ok {
		return zero, fmt.Errorf("expected parsed object, got %T", parsed)
	}
	v, ok := m[key].(T)
	if !ok {
		return zero, fmt.Errorf("property %q: unexpected %T", key, m[key])
	}
	return v, nil
}

func unwrap(_, parsed any) (any, error) {
	if _, ok := parsed.(Node); !ok {
		return nil, fmt.Errorf("union produced %T", parsed)
	}
	return parsed, nil
}

func newString(raw, parsed any) (any, error) {
	s, ok := parsed.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", parsed)
	}
	return &String{base: base{raw}, Value: s}, nil
}

func newBoolean(raw, parsed any) (any, error) {
	b, ok := parsed.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %T", parsed)
	}
	return &Boolean{base: base{raw}, Value: b}, nil
}

func newNumber(raw, parsed any) (any, error) {
	return &Number{base: base{raw}, Value: parsed}, nil
}

func newRegex(raw, parsed any) (any, error) {
	s, err := prop[*String](parsed, "$re")
	if err != nil {
		return nil, err
	}
	return &Regex{base: base{raw}, Pattern: s.Value}, nil
}

func newDataList(raw, parsed any) (any, error) {
	items, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", parsed)
	}
	return &DataList{base: base{raw}, Items: items}, nil
}

func newExists(raw, parsed any) (any, error) {
	b, err := prop[*Boolean](parsed, "$exists")
	if err != nil {
		return nil, err
	}
	return &Exists{base: base{raw}, Want: b.Value}, nil
}

// pattern extracts the pattern of a Regex or String operand.
func pattern(parsed any, key string) (string, error) {
	n, err := prop[Node](parsed, key)
	if err != nil {
		return "", err
	}
	switch op := n.(type) {
	case *Regex:
		return op.Pattern, nil
	case *String:
		return op.Value, nil
	}
	return "", fmt.Errorf("property %q: expected regex or string, got %T", key, n)
}

func newMatches(raw, parsed any) (any, error) {
	p, err := pattern(parsed, "$matches")
	if err != nil {
		return nil, err
	}
	return &Matches{base: base{raw}, Pattern: p}, nil
}

func newSearch(raw, parsed any) (any, error) {
	p, err := pattern(parsed, "$search")
	if err != nil {
		return nil, err
	}
	return &Search{base: base{raw}, Pattern: p}, nil
}

func newFragment(raw, parsed any) (any, error) {
	frag, err := prop[map[string]any](parsed, "$fragment")
	if err != nil {
		return nil, err
	}
	return &Fragment{base: base{raw}, Fragment: frag}, nil
}

func newTypes(raw, parsed any) (any, error) {
	names, err := prop[[]any](parsed, "$types")
	if err != nil {
		return nil, err
	}
	kinds := make([]value.Kind, len(names))
	for i, name := range names {
		s, ok := name.(string)
		if !ok {
			return nil, fmt.Errorf("$types[%d]: expected string, got %T", i, name)
		}
		kinds[i] = value.Kind(s)
	}
	return &Types{base: base{raw}, Kinds: kinds}, nil
}

func newQuantify(q Quantifier) nodespec.Constructor {
	key := q.String()
	return func(raw, parsed any) (any, error) {
		n, err := prop[Node](parsed, key)
		if err != nil {
			return nil, err
		}
		if list, ok := n.(*DataList); ok {
			return &Quantify{base: base{raw}, Quantifier: q, List: list.Items}, nil
		}
		return &Quantify{base: base{raw}, Quantifier: q, Verb: n}, nil
	}
}

func newLength(raw, parsed any) (any, error) {
	n, err := prop[Node](parsed, "$length")
	if err != nil {
		return nil, err
	}
	return &Length{base: base{raw}, Verb: n}, nil
}

func newEnum(raw, parsed any) (any, error) {
	list, err := prop[*DataList](parsed, "$enum")
	if err != nil {
		return nil, err
	}
	return &Enum{base: base{raw}, Values: list.Items}, nil
}

func newCompare(op CompareOp) nodespec.Constructor {
	return func(raw, parsed any) (any, error) {
		m, ok := parsed.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected parsed object, got %T", parsed)
		}
		return &Compare{base: base{raw}, Op: op, Value: m[string(op)]}, nil
	}
}

func newKeys(raw, parsed any) (any, error) {
	n, err := prop[Node](parsed, "$keys")
	if err != nil {
		return nil, err
	}
	return &Keys{base: base{raw}, Verb: n}, nil
}

func newValues(raw, parsed any) (any, error) {
	n, err := prop[Node](parsed, "$values")
	if err != nil {
		return nil, err
	}
	return &Values{base: base{raw}, Verb: n}, nil
}

func children(parsed any, key string) ([]Node, error) {
	elems, err := prop[[]any](parsed, key)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(elems))
	for i, elem := range elems {
		n, ok := elem.(Node)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected node, got %T", key, i, elem)
		}
		out[i] = n
	}
	return out, nil
}

func newAnd(key string) nodespec.Constructor {
	return func(raw, parsed any) (any, error) {
		ch, err := children(parsed, key)
		if err != nil {
			return nil, err
		}
		return &And{base: base{raw}, Children: ch}, nil
	}
}

func newOr(key string) nodespec.Constructor {
	return func(raw, parsed any) (any, error) {
		ch, err := children(parsed, key)
		if err != nil {
			return nil, err
		}
		return &Or{base: base{raw}, Children: ch}, nil
	}
}

func newNot(key string) nodespec.Constructor {
	return func(raw, parsed any) (any, error) {
		n, err := prop[Node](parsed, key)
		if err != nil {
			return nil, err
		}
		return &Not{base: base{raw}, Child: n}, nil
	}
}

func newField(raw, parsed any) (any, error) {
	m, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected parsed object, got %T", parsed)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]FieldEntry, 0, len(keys))
	for _, k := range keys {
		path, err := ParseFieldPath(k)
		if err != nil {
			return nil, err
		}
		verb, ok := m[k].(Node)
		if !ok {
			return nil, fmt.Errorf("field %q: expected node, got %T", k, m[k])
		}
		entries = append(entries, FieldEntry{Path: path, Verb: verb})
	}
	return &Field{base: base{raw}, Entries: entries}, nil
}

func newDefaultEq(raw, parsed any) (any, error) {
	switch lit := parsed.(type) {
	case *Number:
		return &DefaultEq{base: base{raw}, Value: lit.Value}, nil
	case *Boolean:
		return &DefaultEq{base: base{raw}, Value: lit.Value}, nil
	case *String:
		return &DefaultEq{base: base{raw}, Value: lit.Value}, nil
	}
	return nil, fmt.Errorf("expected scalar literal, got %T", parsed)
}

func newDefaultSearch(raw, parsed any) (any, error) {
	re, ok := parsed.(*Regex)
	if !ok {
		return nil, fmt.Errorf("expected regex, got %T", parsed)
	}
	return &DefaultSearch{base: base{raw}, Pattern: re.Pattern}, nil
}
