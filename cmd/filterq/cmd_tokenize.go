package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/format"
	"github.com/dhamidi/filterq/query/parser"
)

func newTokenizeCmd() *cobra.Command {
	var outputFormat string
	var raw bool
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "tokenize <query...>",
		Short: "Print the tokens of a query with the context the parser tagged them with",
		Long: `Print the tokens of a query.

By default the query is parsed so that every token carries the grammar
context the parser recorded for it. Use --raw to print the lexer output
alone. Pass "-" to read the query from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var tokens []parser.Token
			if raw {
				var lexOpts []parser.LexerOption
				if flags.caseSensitiveOperators {
					lexOpts = append(lexOpts, parser.WithCaseSensitiveOperators())
				}
				tokens = parser.Tokenize(query, lexOpts...)
			} else {
				tokens = parser.Parse(query, flags.parserOptions()...).Tokens
			}
			return encoder.EncodeTokens(tokens)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print lexer tokens without parser context")
	flags.register(cmd)

	return cmd
}
