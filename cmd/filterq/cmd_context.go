package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/format"
)

func newContextCmd() *cobra.Command {
	var outputFormat string
	var cursor int
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "context <query...>",
		Short: "Show what the grammar expects at a cursor position",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			engine, err := flags.engine()
			if err != nil {
				return err
			}
			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return encoder.EncodeContext(engine.GetContext(query, cursorIn(query, cursor)))
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line)")
	cmd.Flags().IntVarP(&cursor, "cursor", "c", -1, "cursor byte offset (negative counts from the end)")
	flags.register(cmd)

	return cmd
}
