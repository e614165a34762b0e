package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/tinyql/internal/store"
	"github.com/roach88/tinyql/internal/value"
	"github.com/roach88/tinyql/ql"
)

// Harness runs the cases of one scenario against a seeded store.
type Harness struct {
	store    *store.Store
	compiler *ql.Compiler
	table    string
	label    string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// A case whose expectations fail makes the result fail; Run itself only
// returns an error when the scenario cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for store operations.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	compiler, err := ql.NewCompiler(ql.WithCacheSize(len(scenario.Cases) + 1))
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:    st,
		compiler: compiler,
		table:    scenario.Table,
		label:    scenario.Label,
	}
	if h.table == "" {
		h.table = store.DefaultTable
	}

	docs := make([]any, len(scenario.Documents))
	for i, doc := range scenario.Documents {
		docs[i] = doc
	}
	if len(docs) > 0 {
		if _, err := st.InsertMultiple(ctx, h.table, docs); err != nil {
			return nil, fmt.Errorf("failed to seed documents: %w", err)
		}
	}

	result := NewResult(scenario.Name)
	result.Table = h.table
	result.Documents = len(docs)

	for _, c := range scenario.Cases {
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		evaluateExpect(&cr, c.Expect)
		result.addCase(cr)
	}

	slog.Debug("scenario complete", "scenario", scenario.Name, "cases", len(result.Cases), "passed", result.Passed())
	return result, nil
}

// runCase compiles and runs one query. Syntax errors are outcomes, not
// failures; store errors abort the scenario.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, Pass: true, IDs: []int64{}}

	query, err := value.Normalize(c.Query)
	if err != nil {
		cr.SyntaxError = err.Error()
		cr.Query = fmt.Sprintf("%v", c.Query)
		return cr, nil
	}
	canonical, err := value.MarshalExact(query)
	if err != nil {
		return cr, err
	}
	cr.Query = string(canonical)

	match, err := h.compiler.Compile(query)
	if err != nil {
		var qe *ql.QuerySyntaxError
		if errors.As(err, &qe) {
			cr.SyntaxError = qe.Error()
			return cr, nil
		}
		return cr, err
	}

	docs, err := h.store.Search(ctx, h.table, match)
	if err != nil {
		return cr, err
	}
	for _, doc := range docs {
		cr.IDs = append(cr.IDs, doc.ID)
		if h.label != "" {
			cr.Labels = append(cr.Labels, labelOf(doc.Body, h.label))
		}
	}
	return cr, nil
}

// labelOf renders a document's label field. Strings are shown bare, other
// values as sorted-key JSON, and a missing field as "-".
func labelOf(body map[string]any, field string) string {
	v, ok := body[field]
	if !ok {
		return "-"
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := value.MarshalExact(v)
	if err != nil {
		return "?"
	}
	return string(data)
}
