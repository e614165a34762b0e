package predicate

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/roach88/tinyql/internal/value"
)

// MatchesPattern returns a test for string values matched in full by
// pattern.
func MatchesPattern(pattern string) (Test, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return func(v any) bool {
		s, ok := v.(string)
		return ok && re.MatchString(s)
	}, nil
}

// SearchPattern returns a test for string values with some substring
// matching pattern.
func SearchPattern(pattern string) (Test, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return func(v any) bool {
		s, ok := v.(string)
		return ok && re.MatchString(s)
	}, nil
}

// Fragment tests that the value is a mapping containing frag.
func Fragment(frag map[string]any) Test {
	return func(v any) bool {
		return value.IsFragment(v, frag)
	}
}

// Types tests the datatype of the value.
func Types(kinds []value.Kind) Test {
	return func(v any) bool {
		return slices.Contains(kinds, value.KindOf(v))
	}
}

// Enum tests that the value equals one of values.
func Enum(values []any) Test {
	return func(v any) bool {
		return value.Contains(values, v)
	}
}

// Eq tests deep equality with lit.
func Eq(lit any) Test {
	return func(v any) bool { return value.Equal(v, lit) }
}

// Ne tests deep inequality with lit.
func Ne(lit any) Test {
	return func(v any) bool { return !value.Equal(v, lit) }
}

func ordered(lit any, accept func(int) bool) Test {
	return func(v any) bool {
		c, ok := value.Compare(v, lit)
		return ok && accept(c)
	}
}

// Lt tests v < lit. Only number and string pairs are ordered.
func Lt(lit any) Test { return ordered(lit, func(c int) bool { return c < 0 }) }

// Le tests v <= lit.
func Le(lit any) Test { return ordered(lit, func(c int) bool { return c <= 0 }) }

// Gt tests v > lit.
func Gt(lit any) Test { return ordered(lit, func(c int) bool { return c > 0 }) }

// Ge tests v >= lit.
func Ge(lit any) Test { return ordered(lit, func(c int) bool { return c >= 0 }) }

// Length tests that the value has a length and that p matches it. p sees
// the length as its whole document.
func Length(p Predicate) Test {
	return func(v any) bool {
		n, ok := value.Len(v)
		return ok && p(n)
	}
}

// All tests that the value is a list whose every element matches p, with
// the element as p's document.
func All(p Predicate) Test {
	return func(v any) bool {
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, elem := range list {
			if !p(elem) {
				return false
			}
		}
		return true
	}
}

// Any tests that the value is a list with some element matching p.
func Any(p Predicate) Test {
	return func(v any) bool {
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, elem := range list {
			if p(elem) {
				return true
			}
		}
		return false
	}
}

// AllIn tests that the value is a list containing every element of lits.
func AllIn(lits []any) Test {
	return func(v any) bool {
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, lit := range lits {
			if !value.Contains(list, lit) {
				return false
			}
		}
		return true
	}
}

// AnyIn tests that the value is a list with some element in lits.
func AnyIn(lits []any) Test {
	return func(v any) bool {
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, elem := range list {
			if value.Contains(lits, elem) {
				return true
			}
		}
		return false
	}
}

// FlattenKeys lists every key of a mapping, each followed by the keys of
// its value when that is a mapping too. Keys are visited in sorted order.
// Anything but a mapping yields an empty list.
func FlattenKeys(v any) any {
	out := []any{}
	var walk func(any)
	walk = func(v any) {
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, k)
			walk(m[k])
		}
	}
	walk(v)
	return out
}

// FlattenValues lists every scalar found by descending through lists and
// mappings. A scalar yields itself.
func FlattenValues(v any) any {
	out := []any{}
	var walk func(any)
	walk = func(v any) {
		switch val := v.(type) {
		case []any:
			for _, elem := range val {
				walk(elem)
			}
		case map[string]any:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(val[k])
			}
		default:
			out = append(out, val)
		}
	}
	walk(v)
	return out
}
