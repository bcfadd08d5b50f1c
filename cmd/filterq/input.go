package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/query/catalog"
	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
)

// readQuery joins the arguments into one query. A single "-" reads the
// query from stdin instead, without its trailing newline.
func readQuery(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

// cursorIn resolves the --cursor flag; negative values count from the end
// of the query, so the default of -1 is the end.
func cursorIn(query string, cursor int) int {
	if cursor < 0 {
		cursor = len(query) + cursor + 1
	}
	return max(0, min(cursor, len(query)))
}

// engineFlags are shared by the commands that consult the engine.
type engineFlags struct {
	catalog                string
	caseSensitiveOperators bool
	maxErrors              int
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.caseSensitiveOperators, "case-sensitive-operators", false, "only accept upper-case AND and OR")
	cmd.Flags().IntVar(&f.maxErrors, "max-errors", parser.DefaultMaxErrors, "abort parsing after this many errors")
}

// registerCatalog adds --catalog for the commands that complete.
func (f *engineFlags) registerCatalog(cmd *cobra.Command) {
	f.register(cmd)
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "catalog of keys and values (.yaml, .toml or .json)")
}

func (f *engineFlags) parserOptions() []parser.Option {
	opts := []parser.Option{parser.WithMaxErrors(f.maxErrors)}
	if f.caseSensitiveOperators {
		opts = append(opts, parser.WithLexerOptions(parser.WithCaseSensitiveOperators()))
	}
	return opts
}

func (f *engineFlags) engine() (*complete.Engine, error) {
	opts := []complete.Option{}
	if f.catalog != "" {
		cfg, err := catalog.Load(f.catalog)
		if err != nil {
			return nil, err
		}
		opts = append(opts, complete.WithConfig(cfg))
	}
	opts = append(opts, complete.WithParserOptions(f.parserOptions()...))
	return complete.NewEngine(opts...), nil
}
