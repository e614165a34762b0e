package nodespec

import (
	"errors"
	"fmt"
	"strings"
)

// Mismatch reports that a value does not fit a spec.
//
// Mismatches are produced while loading and are absorbed by union
// resolution: a failing alternative is discarded and the next one tried.
// A Mismatch only escapes Load when no alternative fits.
type Mismatch struct {
	// Kind is the node kind being loaded, if known.
	Kind string

	// Path locates the offending value inside the loaded value.
	Path []string

	// Message describes the failure.
	Message string

	// Causes holds the failures of every alternative of a union.
	Causes []*Mismatch
}

// Error implements the error interface.
func (e *Mismatch) Error() string {
	var sb strings.Builder
	if len(e.Path) > 0 {
		sb.WriteString("at /")
		sb.WriteString(strings.Join(e.Path, "/"))
		sb.WriteString(": ")
	}
	if e.Kind != "" {
		sb.WriteString(e.Kind)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// within returns a copy of e located under seg.
func (e *Mismatch) within(seg string) *Mismatch {
	path := make([]string, 0, len(e.Path)+1)
	path = append(path, seg)
	path = append(path, e.Path...)
	return &Mismatch{Kind: e.Kind, Path: path, Message: e.Message, Causes: e.Causes}
}

// Leaves returns the innermost failures under e, each located relative to
// the value e was reported for. A mismatch without causes is its own leaf.
func (e *Mismatch) Leaves() []*Mismatch {
	if len(e.Causes) == 0 {
		return []*Mismatch{e}
	}
	var out []*Mismatch
	for _, c := range e.Causes {
		for _, leaf := range c.Leaves() {
			path := make([]string, 0, len(e.Path)+len(leaf.Path))
			path = append(path, e.Path...)
			path = append(path, leaf.Path...)
			out = append(out, &Mismatch{Kind: leaf.Kind, Path: path, Message: leaf.Message})
		}
	}
	return out
}

func mismatchf(format string, args ...any) *Mismatch {
	return &Mismatch{Message: fmt.Sprintf(format, args...)}
}

// IsMismatch reports whether err is or wraps a *Mismatch.
func IsMismatch(err error) bool {
	var m *Mismatch
	return errors.As(err, &m)
}

// InternalError reports a defect in a grammar definition: a reference to
// an unregistered kind, a duplicate registration or an invalid pattern.
// It is never caused by user input.
type InternalError struct {
	// Kind is the node kind whose definition is broken.
	Kind string

	// Message describes the defect.
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("schema internal error in %s: %s", e.Kind, e.Message)
	}
	return "schema internal error: " + e.Message
}

// IsInternalError reports whether err is or wraps an *InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
