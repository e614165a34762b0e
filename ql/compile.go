package ql

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/roach88/tinyql/internal/ast"
	"github.com/roach88/tinyql/internal/nodespec"
	"github.com/roach88/tinyql/internal/predicate"
	"github.com/roach88/tinyql/internal/render"
	"github.com/roach88/tinyql/internal/value"
)

// Predicate reports whether a document matches a compiled query.
// Documents are JSON-like values: nil, bool, string, numbers (json.Number,
// float64 or any integer type), []any and map[string]any.
type Predicate = predicate.Predicate

// SchemaURL identifies the published schema when it is registered with a
// JSON Schema validator.
const SchemaURL = "https://github.com/roach88/tinyql/query.schema.json"

type published struct {
	canonical []byte
	validator *jsonschema.Schema
}

var publish = sync.OnceValues(func() (*published, error) {
	sch, err := ast.Schema(ast.KindTopLevel)
	if err != nil {
		return nil, err
	}
	canonical, err := value.MarshalCanonical(sch.Document())
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(SchemaURL, sch.Document()); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	validator, err := c.Compile(SchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &published{canonical: canonical, validator: validator}, nil
})

func mustPublish() *published {
	p, err := publish()
	if err != nil {
		// The grammar is fixed at build time; failing here is a defect.
		panic(&nodespec.InternalError{Kind: ast.KindTopLevel, Message: err.Error()})
	}
	return p
}

// Schema returns the published query grammar as a JSON Schema document.
// Each call returns a fresh copy.
func Schema() map[string]any {
	sch, err := ast.Schema(ast.KindTopLevel)
	if err != nil {
		panic(err)
	}
	return sch.Document()
}

// SchemaJSON returns the published grammar as canonical JSON. The output
// is byte-identical across calls.
func SchemaJSON() []byte {
	src := mustPublish().canonical
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// Compile validates and compiles a query.
//
// raw may be any Go value that maps onto JSON; it is normalized first.
// A query that does not match the grammar, or whose regular expressions do
// not compile, is reported as a *QuerySyntaxError.
func Compile(raw any) (Predicate, error) {
	q, err := value.Normalize(raw)
	if err != nil {
		return nil, &QuerySyntaxError{Message: "query is not a JSON value: " + err.Error()}
	}
	return compileNormalized(q)
}

// CompileJSON decodes a JSON query and compiles it.
func CompileJSON(data []byte) (Predicate, error) {
	q, err := value.Decode(data)
	if err != nil {
		return nil, &QuerySyntaxError{Message: err.Error()}
	}
	return compileNormalized(q)
}

func compileNormalized(q any) (Predicate, error) {
	if err := validate(q); err != nil {
		return nil, err
	}

	node, err := ast.Load(ast.KindTopLevel, q)
	if err != nil {
		var m *nodespec.Mismatch
		if errors.As(err, &m) {
			return nil, fromMismatch(m)
		}
		return nil, err
	}

	p, err := render.Render(node, predicate.Root())
	if err != nil {
		return nil, &QuerySyntaxError{Message: err.Error()}
	}
	slog.Debug("compiled query", "root", fmt.Sprintf("%T", node))
	return p, nil
}

// validate checks q against the published schema.
func validate(q any) error {
	err := mustPublish().validator.Validate(q)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return fromValidationError(verr)
	}
	return &QuerySyntaxError{Message: err.Error()}
}
