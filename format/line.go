package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
)

// LineEncoder writes one tab-separated record per line for use with cut,
// awk and friends. Empty fields are written as "-".
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) EncodeTokens(tokens []parser.Token) error {
	var sb strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&sb, "token\t%s\t%s\t%s\t%s\n",
			tok.Kind,
			tok.Position,
			field(fmt.Sprintf("%q", tok.Value)),
			contextStr(tok.Context),
		)
	}
	return e.write(sb.String())
}

func (e *LineEncoder) EncodeResult(result parser.ParseResult) error {
	var sb strings.Builder
	status := "ok"
	if !result.Success {
		status = "failed"
	}
	fmt.Fprintf(&sb, "result\t%s\t%d\t%s\n", status, len(result.Errors), field(parser.Pretty(result.AST)))
	for _, err := range result.Errors {
		fmt.Fprintf(&sb, "error\t%d:%d\t%s\t%s\t%s\n",
			err.Position.Line,
			err.Position.Column,
			err.Code,
			field(err.Reason.String()),
			err.Message,
		)
	}
	return e.write(sb.String())
}

func (e *LineEncoder) EncodeContext(ctx complete.Context) error {
	var types []string
	for _, t := range ctx.ExpectedTypes {
		types = append(types, t.String())
	}
	line := fmt.Sprintf("context\t%d\t%s\t%s\t%s\t%s\n",
		ctx.CursorPosition,
		field(strings.Join(types, ",")),
		field(ctx.Key),
		field(ctx.IncompleteValue),
		ctx.IncompleteRange,
	)
	return e.write(line)
}

func (e *LineEncoder) EncodeItems(items []complete.Item) error {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "item\t%s\t%s\t%d\t%s\t%s\n",
			item.Type,
			item.Text,
			item.Priority,
			field(item.InsertText),
			field(item.Description),
		)
	}
	return e.write(sb.String())
}

func (e *LineEncoder) write(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}

func field(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func contextStr(ctx *parser.TokenContext) string {
	if ctx == nil {
		return "-"
	}
	var types []string
	for _, t := range ctx.Types {
		types = append(types, t.String())
	}
	s := strings.Join(types, ",")
	if ctx.Key != "" {
		s += "@" + ctx.Key
	}
	return field(s)
}
