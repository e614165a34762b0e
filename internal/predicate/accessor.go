package predicate

import "strings"

// step refines the current value. ok is false when the value is absent.
type step struct {
	label string
	fn    func(any) (any, bool)
}

// Accessor identifies a place in a document relative to its root: a
// sequence of key lookups and value transformations. Accessors are
// immutable; Child and Map return new accessors.
type Accessor struct {
	steps []step
}

// Root returns the accessor for the document itself.
func Root() Accessor {
	return Accessor{}
}

// Child returns the accessor for key in the mapping at a.
func (a Accessor) Child(key string) Accessor {
	return a.with(step{label: key, fn: func(v any) (any, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		child, ok := m[key]
		return child, ok
	}})
}

// Map returns an accessor that transforms the value at a with fn.
func (a Accessor) Map(fn func(any) any) Accessor {
	return a.with(step{label: "*", fn: func(v any) (any, bool) {
		return fn(v), true
	}})
}

func (a Accessor) with(s step) Accessor {
	steps := make([]step, len(a.steps), len(a.steps)+1)
	copy(steps, a.steps)
	return Accessor{steps: append(steps, s)}
}

// Resolve returns the value at a. ok is false when any key along the way
// is missing or a lookup hits a non-mapping.
func (a Accessor) Resolve(doc any) (any, bool) {
	v := doc
	for _, s := range a.steps {
		var ok bool
		if v, ok = s.fn(v); !ok {
			return nil, false
		}
	}
	return v, true
}

// Test returns a predicate applying t to the value at a. An absent value
// does not match.
func (a Accessor) Test(t Test) Predicate {
	return func(doc any) bool {
		v, ok := a.Resolve(doc)
		return ok && t(v)
	}
}

// Exists returns a predicate matching documents where a resolves.
func (a Accessor) Exists() Predicate {
	return func(doc any) bool {
		_, ok := a.Resolve(doc)
		return ok
	}
}

// String returns the dotted key path of a; transformations show as "*".
func (a Accessor) String() string {
	if len(a.steps) == 0 {
		return "."
	}
	parts := make([]string, len(a.steps))
	for i, s := range a.steps {
		parts[i] = s.label
	}
	return strings.Join(parts, ".")
}
