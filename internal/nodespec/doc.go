// Package nodespec describes query-node kinds structurally and derives both
// a JSON Schema and a parser from the same description.
//
// A Spec is a small, JSON-Schema-like value: a datatype with properties,
// pattern properties, required names, enum values and item specs; a union
// of alternative specs; a reference to another registered kind by name; or
// the empty spec, which accepts anything.
//
// REGISTRY:
//
// Kinds are added to a Registry with Register and frozen with Seal. Seal
// checks that every reference names a registered kind, so a dangling
// reference is reported once, as an *InternalError, before any query is
// parsed:
//
//	reg := nodespec.NewRegistry()
//	reg.Register(nodespec.Kind{Name: "Boolean", Spec: &nodespec.Spec{Type: "boolean"}, New: newBoolean})
//	reg.Register(nodespec.Kind{Name: "Exists", Spec: existsSpec, New: newExists})
//	if err := reg.Seal(); err != nil {
//	    panic(err)
//	}
//
// SCHEMA SYNTHESIS:
//
// Synthesize walks a kind's spec and every kind reachable through
// references. References become "#/$defs/<name>" pointers; each name is
// queued the first time it is seen and expanded from a breadth-first
// worklist, so mutually recursive kinds terminate. The result is memoized
// per kind.
//
// LOADING:
//
// Load validates a raw JSON value against a kind's spec and instantiates
// the kind through its constructor. Unions try alternatives in declaration
// order and keep the first success; failures of earlier alternatives are
// discarded. Structural failures are reported as *Mismatch, which callers
// above the loader never see directly.
//
// Loaders for each kind are compiled lazily, once, and are safe for
// concurrent use.
package nodespec
