package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tinyql/ql"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the query-language JSON Schema",
		Long: `Print the JSON Schema that every valid query conforms to.

The text format prints the schema indented with sorted keys. The json
format wraps the schema in the standard response envelope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			if rootOpts.Format == "json" {
				return f.Success(ql.Schema())
			}
			if err := newPrettyPrinter(cmd.OutOrStdout(), 0).print(ql.Schema()); err != nil {
				return f.Fail(ExitCommandError, ErrCodeGeneric, "print schema", err, nil)
			}
			return nil
		},
	}
}
