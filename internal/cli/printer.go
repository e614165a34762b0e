package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/tinyql/internal/store"
	"github.com/roach88/tinyql/internal/value"
)

// prettyPrinter writes document values as indented JSON with sorted keys.
// Containers nested deeper than maxLevel are elided as {...} or [...];
// the outermost container is level 1 and maxLevel 0 means unlimited.
type prettyPrinter struct {
	w        io.Writer
	indent   string
	maxLevel int
}

func newPrettyPrinter(w io.Writer, maxLevel int) *prettyPrinter {
	return &prettyPrinter{w: w, indent: "  ", maxLevel: maxLevel}
}

// printDocuments writes docs as a list, or as an object keyed by id
// when withIndex is set.
func (p *prettyPrinter) printDocuments(docs []store.Document, withIndex bool) error {
	var sb strings.Builder
	if withIndex {
		p.writeIndexed(&sb, docs)
	} else {
		list := make([]any, len(docs))
		for i, d := range docs {
			list[i] = d.Body
		}
		if err := p.write(&sb, list, 1); err != nil {
			return err
		}
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(p.w, sb.String())
	return err
}

// print writes a single value.
func (p *prettyPrinter) print(v any) error {
	var sb strings.Builder
	if err := p.write(&sb, v, 1); err != nil {
		return err
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (p *prettyPrinter) writeIndexed(sb *strings.Builder, docs []store.Document) {
	if len(docs) == 0 {
		sb.WriteString("{}")
		return
	}
	if p.elided(1) {
		sb.WriteString("{...}")
		return
	}
	sb.WriteString("{\n")
	for i, d := range docs {
		p.pad(sb, 1)
		fmt.Fprintf(sb, "%d: ", d.ID)
		// Bodies are valid documents; write cannot fail for them.
		_ = p.write(sb, d.Body, 2)
		if i < len(docs)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('}')
}

func (p *prettyPrinter) write(sb *strings.Builder, v any, level int) error {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			sb.WriteString("{}")
			return nil
		}
		if p.elided(level) {
			sb.WriteString("{...}")
			return nil
		}
		sb.WriteString("{\n")
		keys := value.SortedKeys(val)
		for i, k := range keys {
			p.pad(sb, level)
			if err := p.scalar(sb, k); err != nil {
				return err
			}
			sb.WriteString(": ")
			if err := p.write(sb, val[k], level+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		p.pad(sb, level-1)
		sb.WriteByte('}')
	case []any:
		if len(val) == 0 {
			sb.WriteString("[]")
			return nil
		}
		if p.elided(level) {
			sb.WriteString("[...]")
			return nil
		}
		sb.WriteString("[\n")
		for i, elem := range val {
			p.pad(sb, level)
			if err := p.write(sb, elem, level+1); err != nil {
				return err
			}
			if i < len(val)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		p.pad(sb, level-1)
		sb.WriteByte(']')
	default:
		return p.scalar(sb, v)
	}
	return nil
}

func (p *prettyPrinter) scalar(sb *strings.Builder, v any) error {
	data, err := value.MarshalExact(v)
	if err != nil {
		return err
	}
	sb.Write(data)
	return nil
}

func (p *prettyPrinter) elided(level int) bool {
	return p.maxLevel > 0 && level > p.maxLevel
}

func (p *prettyPrinter) pad(sb *strings.Builder, level int) {
	sb.WriteString(strings.Repeat(p.indent, level))
}
