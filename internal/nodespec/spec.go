package nodespec

// Spec is the structural description of a node kind or of one of its parts.
//
// Exactly one shape applies:
//   - union: AnyOf is non-empty
//   - reference: Ref names a registered kind
//   - accept anything: the zero Spec
//   - shaped: everything else (Type, Properties, Enum, ...)
//
// Specs are built once when a registry is populated and must not be
// modified afterwards.
type Spec struct {
	// Type is the JSON datatype ("string", "boolean", "number", "array",
	// "object"), or empty for no datatype constraint.
	Type string

	// Format is a JSON Schema format annotation ("regex", ...) for string
	// values. It is published in the schema and asserted by the validator;
	// the loader does not check it.
	Format string

	// Properties maps exact property names to their specs.
	Properties map[string]*Spec

	// PatternProperties are tried in order for names without an exact
	// property; the first matching pattern wins.
	PatternProperties []Pattern

	// Required lists property names that must be present.
	Required []string

	// AdditionalProperties controls names matched by neither Properties
	// nor PatternProperties. nil means allowed.
	AdditionalProperties *bool

	// Enum restricts the value to one of the listed values.
	Enum []any

	// Items is the spec every list element is loaded against.
	Items *Spec

	// AdditionalItems controls elements that fail Items. nil means
	// allowed: the element is passed through unparsed.
	AdditionalItems *bool

	// AnyOf lists union alternatives in priority order.
	AnyOf []*Spec

	// Ref names another registered kind.
	Ref string
}

// Pattern pairs a property-name regular expression with the spec applied
// to matching properties.
type Pattern struct {
	Regex string
	Spec  *Spec
}

// Ref returns a spec referring to the named kind.
func Ref(name string) *Spec {
	return &Spec{Ref: name}
}

// AnyOf returns a union of the given alternatives.
func AnyOf(alternatives ...*Spec) *Spec {
	return &Spec{AnyOf: alternatives}
}

// Anything returns the spec that accepts every value unchanged.
func Anything() *Spec {
	return &Spec{}
}

// Forbidden is a convenience for AdditionalProperties and AdditionalItems.
func Forbidden() *bool {
	f := false
	return &f
}

// Object returns an object spec with one required property named key whose
// value is described by value. Extra properties are forbidden.
//
// This is the shape of every operator node: {"$exists": true},
// {"$gt": 12}, ...
func Object(key string, value *Spec) *Spec {
	return &Spec{
		Type:                 "object",
		Properties:           map[string]*Spec{key: value},
		Required:             []string{key},
		AdditionalProperties: Forbidden(),
	}
}

type shape int

const (
	shapeAnything shape = iota
	shapeUnion
	shapeRef
	shapeData
)

func (s *Spec) shape() shape {
	switch {
	case len(s.AnyOf) > 0:
		return shapeUnion
	case s.Ref != "":
		return shapeRef
	case s.isZero():
		return shapeAnything
	default:
		return shapeData
	}
}

func (s *Spec) isZero() bool {
	return s.Type == "" &&
		s.Format == "" &&
		len(s.Properties) == 0 &&
		len(s.PatternProperties) == 0 &&
		len(s.Required) == 0 &&
		s.AdditionalProperties == nil &&
		s.Enum == nil &&
		s.Items == nil &&
		s.AdditionalItems == nil
}

func allowed(flag *bool) bool {
	return flag == nil || *flag
}

// walk calls fn for s and every spec nested inside it, without following
// references.
func (s *Spec) walk(fn func(*Spec) error) error {
	if err := fn(s); err != nil {
		return err
	}
	for _, name := range sortedNames(s.Properties) {
		if err := s.Properties[name].walk(fn); err != nil {
			return err
		}
	}
	for _, p := range s.PatternProperties {
		if err := p.Spec.walk(fn); err != nil {
			return err
		}
	}
	if s.Items != nil {
		if err := s.Items.walk(fn); err != nil {
			return err
		}
	}
	for _, alt := range s.AnyOf {
		if err := alt.walk(fn); err != nil {
			return err
		}
	}
	return nil
}
