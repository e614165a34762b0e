package queryfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var want = map[string]any{
	"status.lang": "jp",
	"age":         map[string]any{"$gt": json.Number("12")},
	"bonus":       map[string]any{"$all": []any{"key", "book"}},
}

func TestDecode_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "json",
			format: FormatJSON,
			input:  `{"status.lang": "jp", "age": {"$gt": 12}, "bonus": {"$all": ["key", "book"]}}`,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input: `
status.lang: jp
age:
  $gt: 12
bonus:
  $all: [key, book]
`,
		},
		{
			name:   "cue",
			format: FormatCUE,
			input: `
"status.lang": "jp"
age: "$gt": 12
bonus: "$all": ["key", "book"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecode_YAMLFloat(t *testing.T) {
	got, err := Decode([]byte("score: {$ge: 2.5}"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"score": map[string]any{"$ge": json.Number("2.5")}}, got)
}

func TestDecode_CUEExpressions(t *testing.T) {
	got, err := Decode([]byte(`
#min: 10
age: "$ge": #min + 2
`), FormatCUE)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age": map[string]any{"$ge": json.Number("12")}}, got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json trailing data", FormatJSON, `{} {}`},
		{"json malformed", FormatJSON, `{"a": `},
		{"yaml empty", FormatYAML, ``},
		{"yaml two documents", FormatYAML, "a: 1\n---\nb: 2\n"},
		{"yaml non-string keys", FormatYAML, "{1: a}"},
		{"yaml syntax", FormatYAML, "a: [1, 2"},
		{"cue incomplete", FormatCUE, `age: int`},
		{"cue conflict", FormatCUE, "a: 1\na: 2"},
		{"cue syntax", FormatCUE, `a: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), tt.format)
			require.Error(t, err)
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode([]byte(`{}`), Format("toml"))
	require.Error(t, err)
	assert.False(t, IsDecodeError(err))
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"json": FormatJSON,
		"JSON": FormatJSON,
		"yaml": FormatYAML,
		"yml":  FormatYAML,
		"cue":  FormatCUE,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseFormat("toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected one of json, yaml, cue")
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, "json|yaml|cue", FormatNames("|"))

	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("queries/q.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromPath("queries/q")
	assert.Error(t, err)

	_, err = FormatFromPath("queries/q.txt")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.cue")
	require.NoError(t, os.WriteFile(path, []byte(`name: "bob"`), 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "bob"}, got)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
	_, err = ReadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader("[1, 2]"), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, got)
}
