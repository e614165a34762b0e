package ast

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldKeyPattern matches a dotted field-path key. It is published as the
// pattern property of the Field kind.
const FieldKeyPattern = `^[^$.\s\d][^$.\s]*(\.[^$.\s\d][^$.\s]*)*$`

var segmentPattern = regexp.MustCompile(`^[^$.\s\d][^$.\s]*$`)

// FieldPath is a non-empty sequence of key names.
type FieldPath []string

// ParseFieldPath splits a dotted key into segments. Every segment must be
// non-empty and must not start with "$", a digit or whitespace.
func ParseFieldPath(key string) (FieldPath, error) {
	segments := strings.Split(key, ".")
	for _, seg := range segments {
		if !segmentPattern.MatchString(seg) {
			return nil, fmt.Errorf("invalid field path %q: bad segment %q", key, seg)
		}
	}
	return FieldPath(segments), nil
}

// String returns the dotted form of the path.
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}
