package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/format"
	"github.com/dhamidi/filterq/query/complete"
)

func newCompleteCmd() *cobra.Command {
	var outputFormat string
	var cursor int
	var stats bool
	var grouping bool
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "complete <query...>",
		Short: "List completion suggestions at a cursor position",
		Long: `List the completion suggestions for a query at a cursor position,
best first.

The cursor is a byte offset into the query and defaults to its end;
negative values count back from the end. Keys and values come from
--catalog. Pass "-" to read the query from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			engine, err := flags.engine()
			if err != nil {
				return err
			}
			if grouping {
				engine = engine.UpdateConfig(complete.WithSuggestGrouping(true))
			}
			pos := cursorIn(query, cursor)

			if stats {
				printStats(cmd, engine.GetCompletionStats(query, pos))
				return nil
			}

			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return encoder.EncodeItems(engine.GetCompletions(query, pos))
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line)")
	cmd.Flags().IntVarP(&cursor, "cursor", "c", -1, "cursor byte offset (negative counts from the end)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print suggestion counts per type instead of the suggestions")
	cmd.Flags().BoolVar(&grouping, "grouping", false, "also suggest parentheses")
	flags.registerCatalog(cmd)

	return cmd
}

func printStats(cmd *cobra.Command, stats complete.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total\t%d\n", stats.Total)

	var names []string
	counts := make(map[string]int)
	for t, n := range stats.ByType {
		names = append(names, t.String())
		counts[t.String()] = n
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s\t%d\n", name, counts[name])
	}
}
