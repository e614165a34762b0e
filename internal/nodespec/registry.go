package nodespec

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Constructor builds a node from the raw value and the value produced by
// loading it against the kind's spec. Errors are treated as mismatches.
type Constructor func(raw, parsed any) (any, error)

// Kind is one named node kind.
type Kind struct {
	Name string
	Spec *Spec
	New  Constructor
}

// entry holds a registered kind and its lazily built artifacts.
type entry struct {
	kind Kind

	loadOnce sync.Once
	load     loadFunc

	schemaOnce sync.Once
	schema     *Schema
	schemaErr  error
}

// Registry maps kind names to kinds.
//
// A registry is populated with Register, frozen with Seal and is read-only
// afterwards. After Seal it is safe for concurrent use.
type Registry struct {
	entries map[string]*entry
	order   []string
	sealed  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a kind. Each name may be registered once.
func (r *Registry) Register(k Kind) error {
	if r.sealed {
		return &InternalError{Kind: k.Name, Message: "registry is sealed"}
	}
	if k.Name == "" {
		return &InternalError{Message: "kind has no name"}
	}
	if k.Spec == nil {
		return &InternalError{Kind: k.Name, Message: "kind has no spec"}
	}
	if _, dup := r.entries[k.Name]; dup {
		return &InternalError{Kind: k.Name, Message: "registered twice"}
	}
	r.entries[k.Name] = &entry{kind: k}
	r.order = append(r.order, k.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kinds ...Kind) {
	for _, k := range kinds {
		if err := r.Register(k); err != nil {
			panic(err)
		}
	}
}

// Seal checks the registry for dangling references and invalid property
// patterns, then freezes it. Seal is idempotent once it has succeeded.
func (r *Registry) Seal() error {
	if r.sealed {
		return nil
	}
	for _, name := range r.order {
		e := r.entries[name]
		err := e.kind.Spec.walk(func(s *Spec) error {
			if s.Ref != "" {
				if _, ok := r.entries[s.Ref]; !ok {
					return &InternalError{Kind: name, Message: fmt.Sprintf("reference to unregistered kind %q", s.Ref)}
				}
			}
			for _, p := range s.PatternProperties {
				if _, err := regexp.Compile(p.Regex); err != nil {
					return &InternalError{Kind: name, Message: fmt.Sprintf("invalid property pattern %q: %v", p.Regex, err)}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	r.sealed = true
	return nil
}

// Sealed reports whether Seal has succeeded.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (Kind, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Kind{}, false
	}
	return e.kind, true
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) entry(name string) (*entry, error) {
	if !r.sealed {
		return nil, &InternalError{Kind: name, Message: "registry is not sealed"}
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, &InternalError{Kind: name, Message: "kind is not registered"}
	}
	return e, nil
}

func sortedNames(m map[string]*Spec) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
