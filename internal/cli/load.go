package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tinyql/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Table string
}

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	Table string  `json:"table"`
	Count int     `json:"count"`
	IDs   []int64 `json:"ids"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <db>",
		Short: "Load JSON documents from stdin into a table",
		Long: `Read one JSON value from stdin and store its documents.

A list inserts each element as a new document with the next free id.
An object keyed by integer ids replaces the documents at those ids.
The database file is created when it does not exist.

Examples:
  tinyql load players.db < players.json
  tinyql load players.db --table players < players.json
  echo '{"3": {"name": "carol"}}' | tinyql load players.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "target table (default: the default table)")

	return cmd
}

func runLoad(opts *LoadOptions, dbPath string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	input, err := loadInput(cmd.InOrStdin())
	if err != nil {
		return failLoad(f, err, nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "cannot open database", err, nil)
	}
	defer st.Close()

	table := opts.Table
	if table == "" {
		table = store.DefaultTable
	}

	var ids []int64
	switch docs := input.(type) {
	case []any:
		ids, err = st.InsertMultiple(ctx, table, docs)
	case map[string]any:
		var byID map[int64]any
		byID, ids, err = parseIndexed(docs)
		if err != nil {
			return failLoad(f, err, nil)
		}
		err = st.Merge(ctx, table, byID)
	default:
		return failLoad(f, &LoadError{Code: ErrCodeInvalidInput, Message: "input must be a list or an object"}, nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, "cannot store documents", err, nil)
	}

	if ids == nil {
		ids = []int64{}
	}
	result := LoadResult{Table: table, Count: len(ids), IDs: ids}
	if opts.Format == "json" {
		return f.Success(result)
	}

	where := "the default table"
	if opts.Table != "" {
		where = "the table " + opts.Table
	}
	plural := "s"
	if len(ids) == 1 {
		plural = ""
	}
	return f.Success(fmt.Sprintf("loaded %d document%s into %s", len(ids), plural, where))
}

// parseIndexed converts an object keyed by decimal ids into a map keyed by
// int64. The returned ids are sorted.
func parseIndexed(docs map[string]any) (map[int64]any, []int64, error) {
	byID := make(map[int64]any, len(docs))
	ids := make([]int64, 0, len(docs))
	for key, body := range docs {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			return nil, nil, &LoadError{
				Code:    ErrCodeInvalidInput,
				Message: fmt.Sprintf("document id %q is not a positive integer", key),
			}
		}
		if _, dup := byID[id]; dup {
			return nil, nil, &LoadError{
				Code:    ErrCodeInvalidInput,
				Message: fmt.Sprintf("document id %d appears more than once", id),
			}
		}
		byID[id] = body
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return byID, ids, nil
}
