package value

import (
	"encoding/json"
	"math"
	"strconv"
	"unicode/utf8"
)

// number is a decoded numeric value. Integers that fit in int64 stay exact;
// everything else is compared as float64.
type number struct {
	i     int64
	f     float64
	exact bool
}

// toNumber extracts a number from v. Booleans are not numbers.
func toNumber(v any) (number, bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			return number{i: i, f: float64(i), exact: true}, true
		}
		f, err := val.Float64()
		if err != nil {
			return number{}, false
		}
		return floatToNumber(f), true
	case float64:
		return floatToNumber(val), true
	case float32:
		return floatToNumber(float64(val)), true
	case int:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case int8:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case int16:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case int32:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case int64:
		return number{i: val, f: float64(val), exact: true}, true
	case uint:
		return floatOrInt(uint64(val)), true
	case uint8:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case uint16:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case uint32:
		return number{i: int64(val), f: float64(val), exact: true}, true
	case uint64:
		return floatOrInt(val), true
	default:
		return number{}, false
	}
}

func floatOrInt(u uint64) number {
	if u <= math.MaxInt64 {
		return number{i: int64(u), f: float64(u), exact: true}
	}
	return number{f: float64(u)}
}

func floatToNumber(f float64) number {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return number{i: int64(f), f: f, exact: true}
	}
	return number{f: f}
}

func compareNumbers(a, b number) int {
	if a.exact && b.exact {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	switch {
	case a.f < b.f:
		return -1
	case a.f > b.f:
		return 1
	}
	return 0
}

// Equal reports deep equality of two document values.
// Numbers compare by value regardless of their Go representation;
// a boolean never equals a number.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb || ka == KindInvalid {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindBoolean:
		return a.(bool) == b.(bool)
	case KindString:
		return a.(string) == b.(string)
	case KindNumber:
		na, _ := toNumber(a)
		nb, _ := toNumber(b)
		return compareNumbers(na, nb) == 0
	case KindArray:
		la, lb := a.([]any), b.([]any)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ma, mb := a.(map[string]any), b.(map[string]any)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values of the same ordered kind.
// Only number/number and string/string pairs are ordered; ok is false
// for every other pair.
func Compare(a, b any) (cmp int, ok bool) {
	if sa, isStr := a.(string); isStr {
		sb, isStr := b.(string)
		if !isStr {
			return 0, false
		}
		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		}
		return 0, true
	}

	na, okA := toNumber(a)
	nb, okB := toNumber(b)
	if !okA || !okB {
		return 0, false
	}
	return compareNumbers(na, nb), true
}

// Len returns the length of a sized value: runes of a string, elements of
// an array or keys of an object.
func Len(v any) (int, bool) {
	switch val := v.(type) {
	case string:
		return utf8.RuneCountInString(val), true
	case []any:
		return len(val), true
	case map[string]any:
		return len(val), true
	}
	return 0, false
}

// Contains reports whether list holds an element equal to v.
func Contains(list []any, v any) bool {
	for _, elem := range list {
		if Equal(elem, v) {
			return true
		}
	}
	return false
}

// IsFragment reports whether doc is a mapping containing every key of frag
// with an equal value. Nested mappings in frag are matched as fragments
// themselves, so extra keys are ignored at every level.
func IsFragment(doc any, frag map[string]any) bool {
	m, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	for k, want := range frag {
		got, present := m[k]
		if !present {
			return false
		}
		if sub, isMap := want.(map[string]any); isMap {
			if !IsFragment(got, sub) {
				return false
			}
			continue
		}
		if !Equal(got, want) {
			return false
		}
	}
	return true
}
