package queryfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tinyql/internal/value"
)

// Format identifies a query file syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCUE}

// FormatNames joins the supported format names with sep.
func FormatNames(sep string) string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, sep)
}

// ParseFormat accepts a format name such as "yaml" or "yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unknown query format %q (expected one of %s)", name, FormatNames(", "))
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s: no file extension to infer the query format from", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// DecodeError reports a query file that could not be read as its format.
type DecodeError struct {
	Format Format
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: decode %s query: %v", e.Source, e.Format, e.Err)
	}
	return fmt.Sprintf("decode %s query: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// ReadFile reads a query file, inferring the format from its extension.
func ReadFile(path string) (any, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query file: %w", err)
	}
	return decode(data, f, path)
}

// Read decodes a query of format f from r.
func Read(r io.Reader, f Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	return Decode(data, f)
}

// Decode decodes a query of format f.
func Decode(data []byte, f Format) (any, error) {
	return decode(data, f, "")
}

func decode(data []byte, f Format, source string) (any, error) {
	var (
		v   any
		err error
	)
	switch f {
	case FormatJSON:
		v, err = value.Decode(data)
	case FormatYAML:
		v, err = decodeYAML(data)
	case FormatCUE:
		v, err = decodeCUE(data, source)
	default:
		return nil, fmt.Errorf("unknown query format %q", f)
	}
	if err != nil {
		return nil, &DecodeError{Format: f, Source: source, Err: err}
	}
	return v, nil
}

// decodeYAML reads exactly one YAML document and normalizes it into the
// JSON value model. Mappings must have string keys.
func decodeYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("expected a single YAML document")
	}

	return value.Normalize(v)
}

// decodeCUE evaluates a CUE file and exports it as JSON.
func decodeCUE(data []byte, source string) (any, error) {
	ctx := cuecontext.New()

	var opts []cue.BuildOption
	if source != "" {
		opts = append(opts, cue.Filename(source))
	}
	v := ctx.CompileBytes(data, opts...)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	out, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return value.Decode(out)
}
