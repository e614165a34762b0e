// Package render lowers a query syntax tree into a predicate.
package render

import (
	"fmt"

	"github.com/roach88/tinyql/internal/ast"
	"github.com/roach88/tinyql/internal/predicate"
)

// Render compiles node into a predicate evaluated at acc.
//
// The only failure is a regular expression that does not compile.
func Render(node ast.Node, acc predicate.Accessor) (predicate.Predicate, error) {
	switch n := node.(type) {
	case *ast.Field:
		ps := make([]predicate.Predicate, 0, len(n.Entries))
		for _, e := range n.Entries {
			at := acc
			for _, seg := range e.Path {
				at = at.Child(seg)
			}
			p, err := Render(e.Verb, at)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Path, err)
			}
			ps = append(ps, p)
		}
		return predicate.And(ps...), nil

	case *ast.Exists:
		if n.Want {
			return acc.Exists(), nil
		}
		return predicate.Not(acc.Exists()), nil

	case *ast.Matches:
		t, err := predicate.MatchesPattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return acc.Test(t), nil

	case *ast.Search:
		t, err := predicate.SearchPattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return acc.Test(t), nil

	case *ast.DefaultSearch:
		t, err := predicate.SearchPattern(n.Pattern)
		if err != nil {
			return nil, err
		}
		return acc.Test(t), nil

	case *ast.Fragment:
		return acc.Test(predicate.Fragment(n.Fragment)), nil

	case *ast.Types:
		return acc.Test(predicate.Types(n.Kinds)), nil

	case *ast.Enum:
		return acc.Test(predicate.Enum(n.Values)), nil

	case *ast.Compare:
		t, err := compareTest(n.Op, n.Value)
		if err != nil {
			return nil, err
		}
		return acc.Test(t), nil

	case *ast.DefaultEq:
		return acc.Test(predicate.Eq(n.Value)), nil

	case *ast.Length:
		// The nested verb sees the length as its whole document.
		p, err := Render(n.Verb, predicate.Root())
		if err != nil {
			return nil, err
		}
		return acc.Test(predicate.Length(p)), nil

	case *ast.Quantify:
		return renderQuantify(n, acc)

	case *ast.Keys:
		return Render(n.Verb, acc.Map(predicate.FlattenKeys))

	case *ast.Values:
		return Render(n.Verb, acc.Map(predicate.FlattenValues))

	case *ast.And:
		ps, err := renderAll(n.Children, acc)
		if err != nil {
			return nil, err
		}
		return predicate.And(ps...), nil

	case *ast.Or:
		ps, err := renderAll(n.Children, acc)
		if err != nil {
			return nil, err
		}
		return predicate.Or(ps...), nil

	case *ast.Not:
		p, err := Render(n.Child, acc)
		if err != nil {
			return nil, err
		}
		return predicate.Not(p), nil
	}
	return nil, fmt.Errorf("render: unsupported node %T", node)
}

// renderQuantify quantifies over the elements of a list-valued field.
// A verb operand is rendered with each element as its document root, so
// {"$all": {"$gt": 12}} tests the elements themselves and
// {"$all": {"name": "orb"}} navigates into element mappings.
func renderQuantify(n *ast.Quantify, acc predicate.Accessor) (predicate.Predicate, error) {
	if n.Verb == nil {
		if n.Quantifier == ast.QuantAll {
			return acc.Test(predicate.AllIn(n.List)), nil
		}
		return acc.Test(predicate.AnyIn(n.List)), nil
	}

	p, err := Render(n.Verb, predicate.Root())
	if err != nil {
		return nil, err
	}
	if n.Quantifier == ast.QuantAll {
		return acc.Test(predicate.All(p)), nil
	}
	return acc.Test(predicate.Any(p)), nil
}

func renderAll(nodes []ast.Node, acc predicate.Accessor) ([]predicate.Predicate, error) {
	ps := make([]predicate.Predicate, 0, len(nodes))
	for _, child := range nodes {
		p, err := Render(child, acc)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func compareTest(op ast.CompareOp, lit any) (predicate.Test, error) {
	switch op {
	case ast.OpEq:
		return predicate.Eq(lit), nil
	case ast.OpNe:
		return predicate.Ne(lit), nil
	case ast.OpLt:
		return predicate.Lt(lit), nil
	case ast.OpLe:
		return predicate.Le(lit), nil
	case ast.OpGt:
		return predicate.Gt(lit), nil
	case ast.OpGe:
		return predicate.Ge(lit), nil
	}
	return nil, fmt.Errorf("render: unknown comparison %q", op)
}
