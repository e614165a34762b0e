package cli

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinyql/internal/store"
	"github.com/roach88/tinyql/internal/value"
)

func TestQuery_Text(t *testing.T) {
	db := seedStore(t, "", players()...)

	tests := []struct {
		name   string
		args   []string
		stdout string
		stderr string
	}{
		{
			name: "default query elides nested values",
			args: []string{"query", db},
			stdout: `[
  {
    "age": 12,
    "name": "bob",
    "tags": [...]
  },
  {
    "age": 14,
    "name": "alice",
    "tags": []
  }
]
`,
			stderr: "found 2 documents on the default table.\n",
		},
		{
			name: "single result is printed in full",
			args: []string{"query", db, `{"name": "bob"}`},
			stdout: `[
  {
    "age": 12,
    "name": "bob",
    "tags": [
      "a"
    ]
  }
]
`,
			stderr: "found 1 document on the default table.\n",
		},
		{
			name: "explicit depth applies to a single result",
			args: []string{"query", db, `{"name": "bob"}`, "--max-depth", "1"},
			stdout: `[
  {
    "age": 12,
    "name": "bob",
    "tags": [...]
  }
]
`,
			stderr: "found 1 document on the default table.\n",
		},
		{
			name: "non-positive depth is unlimited",
			args: []string{"query", db, "{}", "--max-depth", "0"},
			stdout: `[
  {
    "age": 12,
    "name": "bob",
    "tags": [
      "a"
    ]
  },
  {
    "age": 14,
    "name": "alice",
    "tags": []
  }
]
`,
			stderr: "found 2 documents on the default table.\n",
		},
		{
			name: "with index",
			args: []string{"query", db, `{"age": {"$gt": 12}}`, "--with-index"},
			stdout: `{
  2: {
    "age": 14,
    "name": "alice",
    "tags": []
  }
}
`,
			stderr: "found 1 document on the default table.\n",
		},
		{
			name:   "no matches",
			args:   []string{"query", db, `{"name": "carol"}`},
			stdout: "[]\n",
			stderr: "found 0 documents on the default table.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.stdout, stdout)
			assert.Equal(t, tt.stderr, stderr)
		})
	}
}

func TestQuery_JSON(t *testing.T) {
	db := seedStore(t, "", players()...)

	stdout, _, err := execute(t, "", "--format", "json", "query", db, `{"age": {"$gt": 12}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":[{"age":14,"name":"alice","tags":[]}]}`, stdout)

	stdout, _, err = execute(t, "", "--format", "json", "query", db, "--with-index")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{
		"1":{"age":12,"name":"bob","tags":["a"]},
		"2":{"age":14,"name":"alice","tags":[]}}}`, stdout)
}

func TestQuery_NamedTable(t *testing.T) {
	db := seedStore(t, "players", players()...)

	_, stderr, err := execute(t, "", "query", db, "--table", "players")
	require.NoError(t, err)
	assert.Equal(t, "found 2 documents on the table players.\n", stderr)

	_, stderr, err = execute(t, "", "query", db)
	require.NoError(t, err)
	assert.Equal(t, "found 0 documents on the default table.\n", stderr)
}

func TestQuery_TextKeepsStoredSpelling(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"
	db := seedStore(t, "", map[string]any{"name": decomposed, decomposed: composed})

	stdout, _, err := execute(t, "", "query", db)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \""+decomposed+"\": \""+composed+"\",\n    \"name\": \""+decomposed+"\"\n  }\n]\n", stdout)

	stdout, _, err = execute(t, "", "query", db, `{"name": "`+decomposed+`"}`)
	require.NoError(t, err)
	assert.Contains(t, stdout, decomposed)
	assert.NotContains(t, stdout, `"name": "`+composed+`"`)
}

func TestQuery_UnknownTable(t *testing.T) {
	db := seedStore(t, "players", players()...)

	_, stderr, err := execute(t, "", "query", db, "--table", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "E203")
	assert.Contains(t, stderr, `unknown table "nope" (available tables: players)`)
}

func TestQuery_SyntaxError(t *testing.T) {
	db := seedStore(t, "", players()...)

	_, stderr, err := execute(t, "", "query", db, `{"$gt": 1}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E201]")

	stdout, _, err := execute(t, "", "--format", "json", "query", db, `{"$gt": 1}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	v, err := value.Decode([]byte(stdout))
	require.NoError(t, err)
	resp := v.(map[string]any)
	assert.Equal(t, "error", resp["status"])
	cliErr := resp["error"].(map[string]any)
	assert.Equal(t, "E201", cliErr["code"])
	details := cliErr["details"].(map[string]any)
	assert.NotEmpty(t, details["issues"])
}

func TestQuery_MalformedJSON(t *testing.T) {
	db := seedStore(t, "", players()...)

	_, stderr, err := execute(t, "", "query", db, `{"name": `)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "E202")
}

func TestQuery_MissingDatabase(t *testing.T) {
	_, stderr, err := execute(t, "", "query", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "database file does not exist")

	_, stderr, err = execute(t, "", "query", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "database path is not a file")
}

func TestQuery_FromFile(t *testing.T) {
	db := seedStore(t, "", players()...)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "query.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: alice\n"), 0644))
	_, stderr, err := execute(t, "", "query", db, "--file", yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "found 1 document on the default table.\n", stderr)

	cuePath := filepath.Join(dir, "query.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte("age: \"$ge\": 12\n"), 0644))
	_, stderr, err = execute(t, "", "query", db, "--file", cuePath)
	require.NoError(t, err)
	assert.Equal(t, "found 2 documents on the default table.\n", stderr)

	_, stderr, err = execute(t, "", "query", db, "{}", "--file", yamlPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "mutually exclusive")
}

func TestQuery_FromStdin(t *testing.T) {
	db := seedStore(t, "", players()...)

	_, stderr, err := execute(t, `{"age": 12}`, "query", db, "-")
	require.NoError(t, err)
	assert.Equal(t, "found 1 document on the default table.\n", stderr)

	_, stderr, err = execute(t, "name: bob\n", "query", db, "-", "--query-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "found 1 document on the default table.\n", stderr)
}

func TestQuery_Sample(t *testing.T) {
	db := seedStore(t, "", players()...)

	stdout, stderr, err := execute(t, "", "--format", "json", "query", db, "--sample", "1", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, "found 2 documents on the default table (1 sampled).\n", stderr)
	v, err := value.Decode([]byte(stdout))
	require.NoError(t, err)
	assert.Len(t, v.(map[string]any)["data"], 1)

	_, stderr, err = execute(t, "", "query", db, "--sample", "5")
	require.NoError(t, err)
	assert.Equal(t, "found 2 documents on the default table (2 sampled).\n", stderr)

	_, _, err = execute(t, "", "query", db, "--sample", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSampleDocuments(t *testing.T) {
	docs := make([]store.Document, 10)
	for i := range docs {
		docs[i] = store.Document{ID: int64(i + 1), Body: map[string]any{}}
	}

	ids := func(ds []store.Document) []int64 {
		out := make([]int64, len(ds))
		for i, d := range ds {
			out[i] = d.ID
		}
		return out
	}

	first := sampleDocuments(docs, 3, rand.New(rand.NewPCG(42, 42)))
	second := sampleDocuments(docs, 3, rand.New(rand.NewPCG(42, 42)))

	require.Len(t, first, 3)
	assert.Equal(t, ids(first), ids(second))
	assert.True(t, slices.IsSorted(ids(first)))
	for _, id := range ids(first) {
		assert.True(t, id >= 1 && id <= 10)
	}
	assert.Len(t, sampleDocuments(docs, 20, rand.New(rand.NewPCG(1, 1))), 10)
	assert.Equal(t, int64(1), docs[0].ID, "input is not reordered")
}

func TestSummaryLine(t *testing.T) {
	assert.Equal(t, "found 0 documents on the default table.", summaryLine(0, "", false, 0))
	assert.Equal(t, "found 1 document on the table t.", summaryLine(1, "t", false, 1))
	assert.Equal(t, "found 3 documents on the table t (2 sampled).", summaryLine(3, "t", true, 2))
}
