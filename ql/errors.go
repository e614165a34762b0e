package ql

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/tinyql/internal/nodespec"
)

// maxReportedIssues bounds the issues shown by Error. Issues keeps all.
const maxReportedIssues = 3

var printer = message.NewPrinter(language.English)

// QuerySyntaxError reports a query that does not match the grammar.
// It is the only error Compile returns for malformed input.
type QuerySyntaxError struct {
	// Message summarizes the failure.
	Message string `json:"message"`

	// Issues lists individual diagnostics, sorted by path.
	Issues []Issue `json:"issues,omitempty"`
}

// Issue is one diagnostic inside a query.
type Issue struct {
	// Path is a JSON pointer into the query ("" for the root).
	Path string `json:"path"`

	// Message describes what is wrong at Path.
	Message string `json:"message"`
}

// String formats the issue as "path: message".
func (i Issue) String() string {
	path := i.Path
	if path == "" {
		path = "/"
	}
	return path + ": " + i.Message
}

// Error implements the error interface.
func (e *QuerySyntaxError) Error() string {
	var sb strings.Builder
	sb.WriteString("query syntax error: ")
	sb.WriteString(e.Message)
	for i, issue := range e.Issues {
		if i == maxReportedIssues {
			fmt.Fprintf(&sb, "; and %d more", len(e.Issues)-maxReportedIssues)
			break
		}
		sb.WriteString("; ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}

// IsQuerySyntaxError reports whether err is or wraps a *QuerySyntaxError.
func IsQuerySyntaxError(err error) bool {
	var qe *QuerySyntaxError
	return errors.As(err, &qe)
}

// fromValidationError flattens a validator error tree into issues,
// keeping only leaf causes. A pattern that is not a valid regular
// expression is reported on its own: the query is otherwise well formed
// and the failing union alternatives would only hide it.
func fromValidationError(verr *jsonschema.ValidationError) *QuerySyntaxError {
	var issues, patterns []Issue
	var collect func(*jsonschema.ValidationError)
	collect = func(ve *jsonschema.ValidationError) {
		if len(ve.Causes) == 0 {
			path := pointer(ve.InstanceLocation)
			if f, ok := ve.ErrorKind.(*kind.Format); ok && f.Want == "regex" {
				patterns = append(patterns, Issue{
					Path:    path,
					Message: fmt.Sprintf("invalid regular expression %q: %v", f.Got, f.Err),
				})
				return
			}
			issues = append(issues, Issue{
				Path:    path,
				Message: ve.ErrorKind.LocalizedString(printer),
			})
			return
		}
		for _, cause := range ve.Causes {
			collect(cause)
		}
	}
	collect(verr)
	if len(patterns) > 0 {
		issues = patterns
	}
	return &QuerySyntaxError{
		Message: "query does not match the grammar",
		Issues:  normalizeIssues(issues),
	}
}

// fromMismatch converts a loader failure into issues.
func fromMismatch(m *nodespec.Mismatch) *QuerySyntaxError {
	var issues []Issue
	for _, leaf := range m.Leaves() {
		msg := leaf.Message
		if leaf.Kind != "" {
			msg = leaf.Kind + ": " + msg
		}
		issues = append(issues, Issue{Path: pointer(leaf.Path), Message: msg})
	}
	return &QuerySyntaxError{
		Message: "query does not match the grammar",
		Issues:  normalizeIssues(issues),
	}
}

func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		sb.WriteString(strings.ReplaceAll(tok, "/", "~1"))
	}
	return sb.String()
}

// normalizeIssues sorts issues by path and message and drops duplicates.
func normalizeIssues(issues []Issue) []Issue {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Message < issues[j].Message
	})
	out := issues[:0]
	for _, issue := range issues {
		if len(out) > 0 && issue == out[len(out)-1] {
			continue
		}
		out = append(out, issue)
	}
	return out
}
