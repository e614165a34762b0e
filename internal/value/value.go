package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Kind names the runtime datatype of a document value.
// The names match the JSON Schema "type" keyword.
type Kind string

const (
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"

	// KindInvalid is returned for Go values outside the document model.
	KindInvalid Kind = ""
)

// KindOf reports the datatype of v.
// Booleans are never numbers.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case string:
		return KindString
	case json.Number, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindInvalid
	}
}

// Decode parses exactly one JSON value from data.
// Numbers are decoded as json.Number so that large integers keep their
// precision.
func Decode(data []byte) (any, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader parses exactly one JSON value from r.
// Trailing non-whitespace input is an error.
func DecodeReader(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: unexpected data after top-level value")
	}
	return v, nil
}

// Encode marshals a document value as compact JSON.
// Map keys come out sorted, which keeps stored documents stable.
func Encode(v any) ([]byte, error) {
	data, err := gojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return data, nil
}

// Normalize converts a Go value into the document model: numbers become
// json.Number, slices become []any and string-keyed maps become
// map[string]any. The input is never modified.
//
// NaN and infinities are rejected since JSON cannot carry them.
func Normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string:
		return val, nil
	case json.Number:
		if _, err := val.Float64(); err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return val, nil
	case float64:
		return floatNumber(val)
	case float32:
		return floatNumber(float64(val))
	case int:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(val, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(val, 10)), nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := Normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := Normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	}
	return normalizeReflect(v)
}

// normalizeReflect handles typed slices and maps such as []string or
// map[string]int.
func normalizeReflect(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			n, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			n, err := Normalize(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Normalize(rv.Elem().Interface())
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func floatNumber(f float64) (json.Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("number %v is not representable in JSON", f)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
