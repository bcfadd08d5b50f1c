package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/atomicfile"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/format"
	"github.com/dhamidi/filterq/query/catalog"
	"github.com/dhamidi/filterq/query/complete"
)

const historyFile = ".filterq_history"

const replHelp = `Type a query to parse it. Tab completes keys, values and operators.

  :complete <query>   list suggestions at the end of the query
  :context <query>    show what the grammar expects at the end of the query
  :catalog <path>     load a catalog of keys and values
  :format <name>      switch output format (text, json, line)
  :quit               leave
`

func newReplCmd() *cobra.Command {
	var outputFormat string
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit and check queries interactively with tab completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := flags.engine()
			if err != nil {
				return err
			}
			r := &repl{engine: engine, out: cmd.OutOrStdout()}
			if err := r.setFormat(outputFormat); err != nil {
				return err
			}
			return r.run()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line)")
	flags.registerCatalog(cmd)

	return cmd
}

type repl struct {
	engine  *complete.Engine
	encoder format.Encoder
	out     io.Writer
}

func (r *repl) run() error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetTabCompletionStyle(liner.TabPrints)
	ln.SetWordCompleter(r.completeWord)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		var hist bytes.Buffer
		if _, err := ln.WriteHistory(&hist); err == nil {
			_, _ = atomicfile.WriteAll(histPath, &hist, 0o600)
		}
	}()

	fmt.Fprint(r.out, "filterq "+version+" (:help for commands)\n")
	for {
		line, err := ln.Prompt("filterq> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		if quit := r.eval(line); quit {
			return nil
		}
	}
}

// eval handles one line of input and reports whether the session is over.
func (r *repl) eval(line string) bool {
	if !strings.HasPrefix(strings.TrimSpace(line), ":") {
		r.report(r.encoder.EncodeResult(r.engine.Parse(line)))
		return false
	}

	command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(r.out, replHelp)
	case ":complete":
		r.report(r.encoder.EncodeItems(r.engine.GetCompletions(arg, len(arg))))
	case ":context":
		r.report(r.encoder.EncodeContext(r.engine.GetContext(arg, len(arg))))
	case ":catalog":
		cfg, err := catalog.Load(arg)
		if err != nil {
			r.report(err)
			break
		}
		r.engine = r.engine.WithConfig(cfg)
		fmt.Fprintf(r.out, "loaded %d keys\n", len(cfg.Keys))
	case ":format":
		r.report(r.setFormat(arg))
	default:
		fmt.Fprintf(r.out, "unknown command %s, type :help\n", command)
	}
	return false
}

func (r *repl) setFormat(name string) error {
	encoder, err := format.New(name, r.out)
	if err != nil {
		return err
	}
	r.encoder = encoder
	return nil
}

func (r *repl) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "error: %s\n", err)
	}
}

// completeWord adapts the engine to liner. pos counts runes; the engine
// works on bytes.
func (r *repl) completeWord(line string, pos int) (head string, completions []string, tail string) {
	cursor := runeOffset(line, pos)
	ctx := r.engine.GetContext(line, cursor)
	for _, item := range r.engine.Complete(ctx, line) {
		completions = append(completions, item.InsertText)
	}
	span := ctx.IncompleteRange
	return line[:span.Start], completions, line[span.End:]
}

func runeOffset(s string, runes int) int {
	offset := 0
	for i := 0; i < runes && offset < len(s); i++ {
		_, w := utf8.DecodeRuneInString(s[offset:])
		offset += w
	}
	return offset
}
