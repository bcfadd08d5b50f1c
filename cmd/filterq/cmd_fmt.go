package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/query/parser"
)

func newFmtCmd() *cobra.Command {
	var preserve bool
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "fmt <query...>",
		Short: "Print a query in canonical form",
		Long: `Print a query in canonical form: "key: value" for colon conditions,
"key >= value" for comparators, upper-case operators separated by single
spaces, and values quoted only where needed.

Use --preserve to print the query back with its original spacing instead.
Queries with syntax errors are not formatted. Pass "-" to read the query
from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}

			result := parser.Parse(query, flags.parserOptions()...)
			if !result.Success {
				for _, perr := range result.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), perr.Error())
				}
				return fmt.Errorf("query has %d syntax errors", len(result.Errors))
			}

			if preserve {
				fmt.Fprintln(cmd.OutOrStdout(), result.AST.String())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), parser.Pretty(result.AST))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&preserve, "preserve", false, "keep the original spacing")
	flags.register(cmd)

	return cmd
}
