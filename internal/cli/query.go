package cli

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tinyql/internal/queryfile"
	"github.com/roach88/tinyql/internal/store"
)

// defaultMaxDepth applies when --max-depth is not given.
const defaultMaxDepth = 1

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	File        string
	QueryFormat string
	Table       string
	MaxDepth    int
	WithIndex   bool
	Sample      int
	Seed        uint64
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <db> [query]",
		Short: "Search a table with a JSON query",
		Long: `Search the documents of one table and print the matches.

The query is a JSON value given as an argument (default {}), read from
stdin when the argument is "-", or loaded from --file. Query files may be
JSON, YAML or CUE.

Results are printed on stdout in id order. A summary line is written to
stderr.

Exit codes:
  0 - Query ran (including zero matches)
  1 - Query syntax error
  2 - Command error (missing database, unknown table, etc.)

Examples:
  tinyql query players.db '{"name": "bob"}'
  tinyql query players.db '{"age": {"$gt": 12}}' --table players
  tinyql query players.db --file query.yaml --with-index
  echo '{"$not": {}}' | tinyql query players.db -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 2 {
				query = args[1]
			}
			maxDepth := defaultMaxDepth
			depthGiven := cmd.Flags().Changed("max-depth")
			if depthGiven {
				maxDepth = opts.MaxDepth
			}
			return runQuery(opts, args[0], query, maxDepth, depthGiven, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the query from a file")
	cmd.Flags().StringVar(&opts.QueryFormat, "query-format", "", "query format ("+queryfile.FormatNames("|")+")")
	cmd.Flags().StringVar(&opts.Table, "table", "", "target table (default: the default table)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", defaultMaxDepth, "maximum depth to show (a value <= 0 means unlimited)")
	cmd.Flags().BoolVar(&opts.WithIndex, "with-index", false, "display results keyed by document id")
	cmd.Flags().IntVar(&opts.Sample, "sample", -1, "sample N documents randomly")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for --sample (default: random)")

	return cmd
}

func runQuery(opts *QueryOptions, dbPath, queryArg string, maxDepth int, depthGiven bool, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	sampling := cmd.Flags().Changed("sample")
	if sampling && opts.Sample < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--sample must be non-negative", nil, nil)
	}

	st, err := openDatabase(dbPath)
	if err != nil {
		return failLoad(f, err, nil)
	}
	defer st.Close()

	table, err := resolveTable(ctx, st, opts.Table)
	if err != nil {
		return failLoad(f, err, nil)
	}

	q, err := loadQuery(querySource{Arg: queryArg, File: opts.File, Format: opts.QueryFormat}, cmd.InOrStdin())
	if err != nil {
		return failLoad(f, err, nil)
	}

	match, issues, err := compileQuery(q)
	if err != nil {
		var details any
		if len(issues) > 0 {
			details = map[string]any{"issues": issues}
		}
		return failLoad(f, err, details)
	}

	docs, err := st.Search(ctx, table, match)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "search failed", err, nil)
	}
	found := len(docs)
	f.VerboseLog("matched %d document(s) in %s", found, table)

	if sampling {
		docs = sampleDocuments(docs, opts.Sample, newRand(cmd.Flags().Changed("seed"), opts.Seed))
	}

	if opts.Format == "json" {
		if err := f.Success(jsonResults(docs, opts.WithIndex)); err != nil {
			return err
		}
	} else {
		level := 0
		if (found > 1 || depthGiven) && maxDepth > 0 {
			level = maxDepth + 1
		}
		if err := newPrettyPrinter(cmd.OutOrStdout(), level).printDocuments(docs, opts.WithIndex); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "print results", err, nil)
		}
	}

	f.Summary("%s", summaryLine(found, opts.Table, sampling, len(docs)))
	return nil
}

// sampleDocuments picks n documents at random and returns them in id order.
func sampleDocuments(docs []store.Document, n int, r *rand.Rand) []store.Document {
	if n >= len(docs) {
		return docs
	}
	picked := make([]store.Document, len(docs))
	copy(picked, docs)
	r.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	picked = picked[:n]
	slices.SortFunc(picked, func(a, b store.Document) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return picked
}

func newRand(seeded bool, seed uint64) *rand.Rand {
	if !seeded {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// jsonResults shapes docs for the JSON envelope: a list of bodies, or an
// object keyed by decimal id.
func jsonResults(docs []store.Document, withIndex bool) any {
	if withIndex {
		indexed := make(map[string]any, len(docs))
		for _, d := range docs {
			indexed[strconv.FormatInt(d.ID, 10)] = d.Body
		}
		return indexed
	}
	list := make([]any, len(docs))
	for i, d := range docs {
		list[i] = d.Body
	}
	return list
}

// summaryLine reports how many documents matched and where.
func summaryLine(found int, table string, sampled bool, kept int) string {
	plural := "s"
	if found == 1 {
		plural = ""
	}
	where := "the default table"
	if table != "" {
		where = "the table " + table
	}
	line := fmt.Sprintf("found %d document%s on %s", found, plural, where)
	if sampled {
		return fmt.Sprintf("%s (%d sampled).", line, kept)
	}
	return line + "."
}
