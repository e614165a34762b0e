package harness

import (
	"fmt"
	"slices"
	"strings"
)

// ExpectationError is a failed expectation.
type ExpectationError struct {
	Kind     string // ids, labels, count or syntax_error
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Kind, e.Expected, e.Actual)
}

// evaluateExpect checks a case result against its expectation and records
// every failure on the result.
func evaluateExpect(cr *CaseResult, e Expect) {
	for _, err := range checkExpect(cr, e) {
		cr.AddError(err.Error())
	}
}

func checkExpect(cr *CaseResult, e Expect) []error {
	if e.SyntaxError {
		if cr.SyntaxError == "" {
			return []error{&ExpectationError{
				Kind:     "syntax_error",
				Expected: "a syntax error",
				Actual:   fmt.Sprintf("%d match(es)", len(cr.IDs)),
			}}
		}
		return nil
	}

	if cr.SyntaxError != "" {
		return []error{&ExpectationError{
			Kind:     "syntax_error",
			Expected: "a valid query",
			Actual:   cr.SyntaxError,
		}}
	}

	var errs []error
	if e.IDs != nil && !slices.Equal(*e.IDs, cr.IDs) {
		errs = append(errs, &ExpectationError{
			Kind:     "ids",
			Expected: formatIDs(*e.IDs),
			Actual:   formatIDs(cr.IDs),
		})
	}
	if e.Labels != nil && !slices.Equal(*e.Labels, cr.Labels) {
		errs = append(errs, &ExpectationError{
			Kind:     "labels",
			Expected: formatLabels(*e.Labels),
			Actual:   formatLabels(cr.Labels),
		})
	}
	if e.Count != nil && *e.Count != len(cr.IDs) {
		errs = append(errs, &ExpectationError{
			Kind:     "count",
			Expected: fmt.Sprint(*e.Count),
			Actual:   fmt.Sprint(len(cr.IDs)),
		})
	}
	return errs
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatLabels(labels []string) string {
	return "[" + strings.Join(labels, " ") + "]"
}
