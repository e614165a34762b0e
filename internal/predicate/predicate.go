// Package predicate provides compiled document predicates, the accessor
// used to navigate into a document, and the matching primitives.
//
// A Predicate is a pure function of one document. Predicates hold no
// mutable state and are safe for concurrent use. Absent or ill-typed
// values never panic: the test simply evaluates to false.
package predicate

// Predicate reports whether a document matches.
type Predicate func(doc any) bool

// Test is a check applied to the value an accessor resolves to.
type Test func(v any) bool

// Always matches every document.
func Always() Predicate {
	return func(any) bool { return true }
}

// Never matches no document.
func Never() Predicate {
	return func(any) bool { return false }
}

// And matches when every predicate matches. And() is Always.
func And(ps ...Predicate) Predicate {
	switch len(ps) {
	case 0:
		return Always()
	case 1:
		return ps[0]
	}
	return func(doc any) bool {
		for _, p := range ps {
			if !p(doc) {
				return false
			}
		}
		return true
	}
}

// Or matches when some predicate matches. Or() is Never.
func Or(ps ...Predicate) Predicate {
	switch len(ps) {
	case 0:
		return Never()
	case 1:
		return ps[0]
	}
	return func(doc any) bool {
		for _, p := range ps {
			if p(doc) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(doc any) bool { return !p(doc) }
}
