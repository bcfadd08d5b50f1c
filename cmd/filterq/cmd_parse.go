package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/format"
	"github.com/dhamidi/filterq/query/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "parse <query...>",
		Short: "Parse a query and dump the syntax tree and errors",
		Long: `Parse a query and dump the result.

The command exits with an error when the query has syntax errors, after
printing them. Pass "-" to read the query from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			result := parser.Parse(query, flags.parserOptions()...)
			if err := encoder.EncodeResult(result); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if !result.Success {
				return fmt.Errorf("query has %d syntax errors", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line)")
	flags.register(cmd)

	return cmd
}
