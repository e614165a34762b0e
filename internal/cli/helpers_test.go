package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tinyql/internal/store"
)

// seedStore creates a database with docs in table and returns its path.
func seedStore(t *testing.T, table string, docs ...any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "docs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	if len(docs) > 0 {
		_, err = st.InsertMultiple(context.Background(), table, docs)
		require.NoError(t, err)
	}
	require.NoError(t, st.Close())
	return path
}

// execute runs the root command with args and stdin.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func players() []any {
	return []any{
		map[string]any{"name": "bob", "age": 12, "tags": []any{"a"}},
		map[string]any{"name": "alice", "age": 14, "tags": []any{}},
	}
}
