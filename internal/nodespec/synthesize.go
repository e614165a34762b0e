package nodespec

import (
	"fmt"
	"slices"
)

// Draft is the JSON Schema dialect of synthesized documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// DefsPrefix is the pointer prefix references are rewritten to.
const DefsPrefix = "#/$defs/"

// Schema is the synthesized schema of one kind: its definition plus the
// definitions of every kind reachable from it through references.
type Schema struct {
	// Root is the kind the schema was synthesized for.
	Root string

	// Order lists the definitions in reverse discovery order. Every kind
	// appears after the kinds discovered from it.
	Order []string

	// Defs maps kind names to their schema definitions.
	Defs map[string]map[string]any
}

// Document returns the schema as a JSON document with "$schema", "$defs"
// and a root "$ref". Each call returns a fresh copy.
func (s *Schema) Document() map[string]any {
	defs := make(map[string]any, len(s.Defs))
	for name, def := range s.Defs {
		defs[name] = deepCopy(def)
	}
	return map[string]any{
		"$schema": Draft,
		"$defs":   defs,
		"$ref":    DefsPrefix + s.Root,
	}
}

// Synthesize returns the schema of the named kind. The result is computed
// once per kind and shared; use Document for a copy that may be modified.
//
// A reference to an unregistered kind is reported as an *InternalError.
func (r *Registry) Synthesize(name string) (*Schema, error) {
	e, err := r.entry(name)
	if err != nil {
		return nil, err
	}
	e.schemaOnce.Do(func() {
		e.schema, e.schemaErr = r.synthesize(name)
	})
	return e.schema, e.schemaErr
}

// synthesize expands root and every referenced kind from a breadth-first
// worklist. A name is queued the first time a reference to it is
// rewritten, so cycles terminate after each kind is expanded once.
func (r *Registry) synthesize(root string) (*Schema, error) {
	discovered := []string{root}
	seen := map[string]bool{root: true}
	visit := func(name string) error {
		if _, ok := r.entries[name]; !ok {
			return &InternalError{Message: fmt.Sprintf("reference to unregistered kind %q", name)}
		}
		if !seen[name] {
			seen[name] = true
			discovered = append(discovered, name)
		}
		return nil
	}

	defs := make(map[string]map[string]any)
	for i := 0; i < len(discovered); i++ {
		name := discovered[i]
		def, err := rewrite(r.entries[name].kind.Spec, visit)
		if err != nil {
			if ie, ok := err.(*InternalError); ok && ie.Kind == "" {
				ie.Kind = name
			}
			return nil, err
		}
		defs[name] = def
	}

	order := slices.Clone(discovered)
	slices.Reverse(order)
	return &Schema{Root: root, Order: order, Defs: defs}, nil
}

// rewrite converts a spec into schema JSON, replacing references with
// pointers into $defs and reporting each referenced name to visit.
func rewrite(s *Spec, visit func(string) error) (map[string]any, error) {
	switch s.shape() {
	case shapeAnything:
		return map[string]any{}, nil
	case shapeRef:
		if err := visit(s.Ref); err != nil {
			return nil, err
		}
		return map[string]any{"$ref": DefsPrefix + s.Ref}, nil
	case shapeUnion:
		alts := make([]any, 0, len(s.AnyOf))
		for _, alt := range s.AnyOf {
			def, err := rewrite(alt, visit)
			if err != nil {
				return nil, err
			}
			alts = append(alts, def)
		}
		return map[string]any{"anyOf": alts}, nil
	}

	out := make(map[string]any)
	if s.Type != "" {
		out["type"] = s.Type
	}
	if s.Format != "" {
		out["format"] = s.Format
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for _, name := range sortedNames(s.Properties) {
			def, err := rewrite(s.Properties[name], visit)
			if err != nil {
				return nil, err
			}
			props[name] = def
		}
		out["properties"] = props
	}
	if len(s.PatternProperties) > 0 {
		patterns := make(map[string]any, len(s.PatternProperties))
		for _, p := range s.PatternProperties {
			def, err := rewrite(p.Spec, visit)
			if err != nil {
				return nil, err
			}
			patterns[p.Regex] = def
		}
		out["patternProperties"] = patterns
	}
	if len(s.Required) > 0 {
		req := make([]any, len(s.Required))
		for i, name := range s.Required {
			req[i] = name
		}
		out["required"] = req
	}
	if s.AdditionalProperties != nil {
		out["additionalProperties"] = *s.AdditionalProperties
	}
	if s.Enum != nil {
		enum := make([]any, len(s.Enum))
		for i, v := range s.Enum {
			enum[i] = deepCopy(v)
		}
		out["enum"] = enum
	}
	// Elements that fail Items are passed through by the loader unless
	// additional items are forbidden, so only then does Items constrain
	// the value.
	if s.Items != nil && !allowed(s.AdditionalItems) {
		def, err := rewrite(s.Items, visit)
		if err != nil {
			return nil, err
		}
		out["items"] = def
	}
	return out, nil
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = deepCopy(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopy(elem)
		}
		return out
	default:
		return v
	}
}
