package ql

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinyql/internal/value"
)

func doc(t *testing.T, s string) any {
	t.Helper()
	v, err := value.Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func TestCompileJSON_Matches(t *testing.T) {
	match, err := CompileJSON([]byte(`{"status.lang": "jp", "age": {"$gt": 12}}`))
	require.NoError(t, err)

	assert.True(t, match(doc(t, `{"age": 13, "status": {"lang": "jp"}}`)))
	assert.False(t, match(doc(t, `{"age": 12, "status": {"lang": "jp"}}`)))
	assert.False(t, match(doc(t, `{"age": 13}`)))
	assert.False(t, match(doc(t, `"not an object"`)))
}

func TestCompile_GoValues(t *testing.T) {
	match, err := Compile(map[string]any{
		"tags": map[string]any{"$all": []string{"a", "b"}},
		"n":    map[string]any{"$le": 3},
	})
	require.NoError(t, err)

	assert.True(t, match(map[string]any{"tags": []any{"b", "c", "a"}, "n": 3}))
	assert.True(t, match(map[string]any{"tags": []any{"a", "b"}, "n": float64(2.5)}))
	assert.False(t, match(map[string]any{"tags": []any{"a"}, "n": 1}))
}

func TestCompile_NotJSON(t *testing.T) {
	_, err := Compile(map[string]any{"f": make(chan int)})
	require.Error(t, err)
	assert.True(t, IsQuerySyntaxError(err))
}

func TestCompileJSON_Malformed(t *testing.T) {
	_, err := CompileJSON([]byte(`{"name": `))
	require.Error(t, err)
	assert.True(t, IsQuerySyntaxError(err))
}

func TestCompile_SyntaxErrors(t *testing.T) {
	for _, q := range []string{
		`{"$gt": 12}`,
		`12`,
		`"bob"`,
		`null`,
		`[]`,
		`{"$exists": true}`,
		`{"name": null}`,
		`{"age": {"$gt": 12, "$lt": 20}}`,
		`{"status.$exists": true}`,
		`{".name": 1}`,
		`{"name.": 1}`,
		`{"1st": 1}`,
		`{"x": {"$types": ["integer"]}}`,
		`{"x": {"$enum": "a"}}`,
		`{"x": {"$unknown": 1}}`,
		`{"$and": [{"$gt": 1}]}`,
		`{"$or": {"name": "bob"}}`,
	} {
		t.Run(q, func(t *testing.T) {
			_, err := CompileJSON([]byte(q))
			require.Error(t, err)
			var qe *QuerySyntaxError
			require.ErrorAs(t, err, &qe)
			assert.NotEmpty(t, qe.Issues)
			assert.True(t, strings.HasPrefix(err.Error(), "query syntax error: "))
		})
	}
}

func TestCompile_InvalidRegex(t *testing.T) {
	for _, q := range []string{
		`{"name": {"$re": "("}}`,
		`{"name": {"$matches": "[a-"}}`,
		`{"name": {"$search": {"$re": "*"}}}`,
	} {
		t.Run(q, func(t *testing.T) {
			_, err := CompileJSON([]byte(q))
			require.Error(t, err)
			assert.True(t, IsQuerySyntaxError(err))
			assert.Contains(t, err.Error(), "invalid regular expression")

			var qe *QuerySyntaxError
			require.ErrorAs(t, err, &qe)
			require.Len(t, qe.Issues, 1)
			assert.True(t, strings.HasPrefix(qe.Issues[0].Path, "/name"))
		})
	}
}

func TestCompile_EmptyQueryMatchesEverything(t *testing.T) {
	match, err := CompileJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, match(doc(t, `{"a": 1}`)))
	assert.True(t, match(doc(t, `{}`)))
}

func TestQuerySyntaxError_Format(t *testing.T) {
	err := &QuerySyntaxError{
		Message: "query does not match the grammar",
		Issues: []Issue{
			{Path: "", Message: "root"},
			{Path: "/a", Message: "one"},
			{Path: "/b", Message: "two"},
			{Path: "/c", Message: "three"},
			{Path: "/d", Message: "four"},
		},
	}
	assert.Equal(t,
		"query syntax error: query does not match the grammar; /: root; /a: one; /b: two; and 2 more",
		err.Error())
}

func TestPointer(t *testing.T) {
	assert.Equal(t, "", pointer(nil))
	assert.Equal(t, "/status.lang/$gt", pointer([]string{"status.lang", "$gt"}))
	assert.Equal(t, "/a~1b/c~0d", pointer([]string{"a/b", "c~d"}))
}

func TestNormalizeIssues(t *testing.T) {
	got := normalizeIssues([]Issue{
		{Path: "/b", Message: "x"},
		{Path: "/a", Message: "y"},
		{Path: "/b", Message: "x"},
		{Path: "/a", Message: "x"},
	})
	assert.Equal(t, []Issue{
		{Path: "/a", Message: "x"},
		{Path: "/a", Message: "y"},
		{Path: "/b", Message: "x"},
	}, got)
}

func TestSchemaJSON_Deterministic(t *testing.T) {
	first := SchemaJSON()
	for range 5 {
		assert.True(t, bytes.Equal(first, SchemaJSON()))
	}

	first[0] = 'X'
	assert.NotEqual(t, first[0], SchemaJSON()[0])
}

func TestSchema_Closed(t *testing.T) {
	doc := Schema()
	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", doc["$schema"])
	assert.Equal(t, "#/$defs/TopLevel", doc["$ref"])

	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	for _, ref := range refsIn(t, raw) {
		name := strings.TrimPrefix(ref, "#/$defs/")
		assert.Contains(t, defs, name, "dangling %s", ref)
	}

	// Callers may mutate their copy.
	delete(defs, "TopLevel")
	_, ok = Schema()["$defs"].(map[string]any)["TopLevel"]
	assert.True(t, ok)
}

func refsIn(t *testing.T, raw []byte) []string {
	t.Helper()
	var refs []string
	var walk func(v any)
	walk = func(v any) {
		switch v := v.(type) {
		case map[string]any:
			for k, child := range v {
				if s, ok := child.(string); ok && k == "$ref" {
					refs = append(refs, s)
				}
				walk(child)
			}
		case []any:
			for _, child := range v {
				walk(child)
			}
		}
	}
	var doc any
	require.NoError(t, json.Unmarshal(raw, &doc))
	walk(doc)
	require.NotEmpty(t, refs)
	return refs
}

// The published schema must agree with Compile when loaded by an
// independent validator.
func TestSchemaJSON_AgreesWithCompile(t *testing.T) {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(SchemaJSON()))
	require.NoError(t, err)
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	require.NoError(t, c.AddResource("query.json", schemaDoc))
	sch, err := c.Compile("query.json")
	require.NoError(t, err)

	for _, tc := range []struct {
		query string
		valid bool
	}{
		{`{}`, true},
		{`{"name": "bob"}`, true},
		{`{"status.current-stage": {"$exists": true}}`, true},
		{`{"$or": [{"a": 1}, {"b": {"$re": "x"}}]}`, true},
		{`{"$not": {"$fragment": {"a": 1}}}`, true},
		{`{"bonus": {"$any": {"$search": "cand"}}}`, true},
		{`{"bonus": {"$length": {"$ge": 2}}}`, true},
		{`{"meta": {"$keys": {"$all": ["a"]}}}`, true},
		{`{"$gt": 12}`, false},
		{`{"name": null}`, false},
		{`{"status.$exists": true}`, false},
		{`{"x": {"$types": ["integer"]}}`, false},
		{`12`, false},
		{`{"name": {"$re": "("}}`, false},
		{`{"name": {"$matches": "[a-"}}`, false},
		{`{"name": {"$search": {"$re": "*"}}}`, false},
	} {
		t.Run(tc.query, func(t *testing.T) {
			q, err := jsonschema.UnmarshalJSON(strings.NewReader(tc.query))
			require.NoError(t, err)
			verr := sch.Validate(q)
			_, cerr := CompileJSON([]byte(tc.query))
			if tc.valid {
				assert.NoError(t, verr)
				assert.NoError(t, cerr)
			} else {
				assert.Error(t, verr)
				assert.Error(t, cerr)
			}
		})
	}
}
