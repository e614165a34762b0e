package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a document value.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (RFC 8785), not UTF-8 bytes
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Integral numbers are written without fraction or exponent
//
// Two values that are Equal and NFC-equivalent encode to the same bytes.
func MarshalCanonical(v any) ([]byte, error) {
	return canonicalWriter{nfc: true}.marshal(v)
}

// MarshalExact is MarshalCanonical without NFC normalization: strings keep
// their bytes, so two values encode alike only when they are Equal.
// Use it for cache keys and for printing stored documents.
func MarshalExact(v any) ([]byte, error) {
	return canonicalWriter{}.marshal(v)
}

type canonicalWriter struct {
	nfc bool
}

func (w canonicalWriter) marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w canonicalWriter) write(buf *bytes.Buffer, v any) error {
	switch KindOf(v) {
	case KindNull:
		buf.WriteString("null")
	case KindBoolean:
		if v.(bool) {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindString:
		return w.writeString(buf, v.(string))
	case KindNumber:
		n, ok := toNumber(v)
		if !ok {
			return fmt.Errorf("invalid number: %v", v)
		}
		if n.exact {
			buf.WriteString(strconv.FormatInt(n.i, 10))
		} else {
			buf.WriteString(strconv.FormatFloat(n.f, 'g', -1, 64))
		}
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.([]any) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := w.write(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case KindObject:
		obj := v.(map[string]any)
		buf.WriteByte('{')
		for i, k := range SortedKeys(obj) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := w.writeString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := w.write(buf, obj[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeString writes a JSON string without HTML escaping, NFC normalized
// when w.nfc is set. U+2028 and U+2029 are written literally.
func (w canonicalWriter) writeString(buf *bytes.Buffer, s string) error {
	if w.nfc {
		s = norm.NFC.String(s)
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes back into the
// literal characters, leaving an escaped backslash followed by "u2028"
// untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+1 < len(data) {
			if data[i+1] == 'u' && i+5 < len(data) && string(data[i+2:i+5]) == "202" &&
				(data[i+5] == '8' || data[i+5] == '9') {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
			// any other escape: copy both bytes so "\\" never starts a match
			out = append(out, data[i], data[i+1])
			i++
			continue
		}
		out = append(out, data[i])
	}
	return out
}

// SortedKeys returns the keys of obj in RFC 8785 order (UTF-16 code units).
func SortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
