package nodespec

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/roach88/tinyql/internal/value"
)

// loadFunc loads one value against a compiled spec.
type loadFunc func(v any) (any, *Mismatch)

type compiledPattern struct {
	re   *regexp.Regexp
	load loadFunc
}

// Load parses raw as the named kind and returns the node built by the
// kind's constructor.
//
// A value that does not fit is reported as a *Mismatch. Loading from an
// unsealed registry or an unknown kind is an *InternalError.
func (r *Registry) Load(name string, raw any) (any, error) {
	if _, err := r.entry(name); err != nil {
		return nil, err
	}
	node, m := r.load(name, raw)
	if m != nil {
		return nil, m
	}
	return node, nil
}

func (r *Registry) load(name string, raw any) (any, *Mismatch) {
	e := r.entries[name]
	e.loadOnce.Do(func() {
		e.load = r.compile(e.kind.Spec)
	})

	parsed, m := e.load(raw)
	if m != nil {
		return nil, tagKind(m, name)
	}
	if e.kind.New == nil {
		return parsed, nil
	}
	node, err := e.kind.New(raw, parsed)
	if err != nil {
		if cm, ok := err.(*Mismatch); ok {
			return nil, tagKind(cm, name)
		}
		return nil, &Mismatch{Kind: name, Message: err.Error()}
	}
	return node, nil
}

func tagKind(m *Mismatch, name string) *Mismatch {
	if m.Kind != "" {
		return m
	}
	return &Mismatch{Kind: name, Path: m.Path, Message: m.Message, Causes: m.Causes}
}

// compile builds the loader for a spec. References are resolved when a
// value is loaded, not here, so compiling a recursive grammar terminates.
func (r *Registry) compile(s *Spec) loadFunc {
	switch s.shape() {
	case shapeAnything:
		return loadAnything
	case shapeUnion:
		return r.compileUnion(s)
	case shapeRef:
		name := s.Ref
		return func(v any) (any, *Mismatch) {
			return r.load(name, v)
		}
	default:
		return r.compileData(s)
	}
}

func loadAnything(v any) (any, *Mismatch) {
	return v, nil
}

func (r *Registry) compileUnion(s *Spec) loadFunc {
	alts := make([]loadFunc, len(s.AnyOf))
	for i, alt := range s.AnyOf {
		alts[i] = r.compile(alt)
	}
	return func(v any) (any, *Mismatch) {
		causes := make([]*Mismatch, 0, len(alts))
		for _, load := range alts {
			parsed, m := load(v)
			if m == nil {
				return parsed, nil
			}
			causes = append(causes, m)
		}
		return nil, &Mismatch{Message: "no alternative matched", Causes: causes}
	}
}

func (r *Registry) compileData(s *Spec) loadFunc {
	props := make(map[string]loadFunc, len(s.Properties))
	for name, sub := range s.Properties {
		props[name] = r.compile(sub)
	}
	patterns := make([]compiledPattern, len(s.PatternProperties))
	for i, p := range s.PatternProperties {
		// Seal has already compiled every pattern once.
		patterns[i] = compiledPattern{re: regexp.MustCompile(p.Regex), load: r.compile(p.Spec)}
	}
	var items loadFunc
	if s.Items != nil {
		items = r.compile(s.Items)
	}
	extraOK := allowed(s.AdditionalProperties)
	itemsOK := allowed(s.AdditionalItems)

	return func(v any) (any, *Mismatch) {
		if s.Type != "" {
			if got := value.KindOf(v); got != value.Kind(s.Type) {
				return nil, mismatchf("expected %s, got %s", s.Type, describeKind(got))
			}
		}
		if s.Enum != nil && !value.Contains(s.Enum, v) {
			return nil, mismatchf("value is not one of the allowed values")
		}

		switch val := v.(type) {
		case []any:
			if items == nil {
				return val, nil
			}
			out := make([]any, len(val))
			for i, elem := range val {
				parsed, m := items(elem)
				if m != nil {
					if itemsOK {
						out[i] = elem
						continue
					}
					return nil, m.within(strconv.Itoa(i))
				}
				out[i] = parsed
			}
			return out, nil

		case map[string]any:
			for _, name := range s.Required {
				if _, ok := val[name]; !ok {
					return nil, mismatchf("missing required property %q", name)
				}
			}
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := make(map[string]any, len(val))
			for _, k := range keys {
				load := props[k]
				if load == nil {
					for _, p := range patterns {
						if p.re.MatchString(k) {
							load = p.load
							break
						}
					}
				}
				if load == nil {
					if !extraOK {
						return nil, mismatchf("unexpected property %q", k)
					}
					out[k] = val[k]
					continue
				}
				parsed, m := load(val[k])
				if m != nil {
					return nil, m.within(k)
				}
				out[k] = parsed
			}
			return out, nil
		}
		return v, nil
	}
}

func describeKind(k value.Kind) string {
	if k == value.KindInvalid {
		return "unsupported value"
	}
	return string(k)
}
