package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
)

type theme struct {
	heading lipgloss.Style
	kind    lipgloss.Style
	span    lipgloss.Style
	value   lipgloss.Style
	context lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

// newTheme binds styles to r so that colors are only emitted when the
// writer behind r is a terminal.
func newTheme(r *lipgloss.Renderer) theme {
	accent := lipgloss.Color("#58d4ff")
	muted := lipgloss.Color("#9fb3c8")

	return theme{
		heading: r.NewStyle().Bold(true),
		kind:    r.NewStyle().Foreground(accent),
		span:    r.NewStyle().Foreground(muted),
		value:   r.NewStyle().Bold(true),
		context: r.NewStyle().Faint(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#5fd787")).Bold(true),
		err:     r.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true),
		muted:   r.NewStyle().Foreground(muted),
	}
}

// TextEncoder writes human readable output.
type TextEncoder struct {
	w     io.Writer
	theme theme
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w, theme: newTheme(lipgloss.NewRenderer(w))}
}

func (e *TextEncoder) EncodeTokens(tokens []parser.Token) error {
	var sb strings.Builder
	t := e.theme
	kindWidth, valueWidth := len("kind"), len("value")
	for _, tok := range tokens {
		kindWidth = max(kindWidth, len(tok.Kind.String()))
		valueWidth = max(valueWidth, len(fmt.Sprintf("%q", tok.Value)))
	}

	fmt.Fprintf(&sb, "%s\n", t.heading.Render(fmt.Sprintf("%-3s %-*s %-7s %-*s %s",
		"#", kindWidth, "kind", "span", valueWidth, "value", "context")))
	for i, tok := range tokens {
		fmt.Fprintf(&sb, "%-3d %s %s %s %s\n",
			i,
			t.kind.Render(pad(tok.Kind.String(), kindWidth)),
			t.span.Render(pad(tok.Position.String(), 7)),
			t.value.Render(pad(fmt.Sprintf("%q", tok.Value), valueWidth)),
			t.context.Render(contextStr(tok.Context)),
		)
	}
	return e.write(sb.String())
}

func (e *TextEncoder) EncodeResult(result parser.ParseResult) error {
	var sb strings.Builder
	t := e.theme
	if result.Success {
		fmt.Fprintf(&sb, "%s %s\n", t.ok.Render("ok"), parser.Pretty(result.AST))
	} else {
		fmt.Fprintf(&sb, "%s\n", t.err.Render(plural(len(result.Errors), "error")))
	}

	if result.AST != nil {
		e.tree(&sb, result.AST, 0)
	}

	for _, err := range result.Errors {
		fmt.Fprintf(&sb, "%s %s %s\n",
			t.span.Render(fmt.Sprintf("%d:%d", err.Position.Line, err.Position.Column)),
			t.err.Render(err.Code.String()),
			err.Message,
		)
	}
	return e.write(sb.String())
}

func (e *TextEncoder) tree(sb *strings.Builder, n parser.Node, depth int) {
	t := e.theme
	fmt.Fprintf(sb, "%s%s %s", strings.Repeat("  ", depth), t.kind.Render(n.Kind().String()), t.span.Render(n.Pos().String()))
	if text := nodeText(n); text != "" {
		fmt.Fprintf(sb, " %s", t.value.Render(text))
	}
	sb.WriteString("\n")
	for _, child := range parser.Children(n) {
		e.tree(sb, child, depth+1)
	}
}

func nodeText(n parser.Node) string {
	switch n := n.(type) {
	case *parser.KeyNode:
		return n.Value
	case *parser.ComparatorNode:
		return n.Value
	case *parser.OperatorNode:
		return n.Value
	case *parser.ValueNode:
		if n.Quoted {
			return parser.Quote(n.Value)
		}
		return n.Value
	}
	return ""
}

func (e *TextEncoder) EncodeContext(ctx complete.Context) error {
	var sb strings.Builder
	t := e.theme

	var types []string
	for _, ct := range ctx.ExpectedTypes {
		types = append(types, ct.String())
	}

	row := func(label, value string) {
		fmt.Fprintf(&sb, "%s %s\n", t.heading.Render(pad(label, 12)), value)
	}
	row("cursor", fmt.Sprint(ctx.CursorPosition))
	row("expected", t.value.Render(strings.Join(types, ", ")))
	if ctx.Key != "" {
		row("key", ctx.Key)
	}
	row("incomplete", fmt.Sprintf("%q %s", ctx.IncompleteValue, t.span.Render(ctx.IncompleteRange.String())))
	row("in quotes", fmt.Sprint(ctx.IsInQuotes))
	if ctx.CurrentToken != nil {
		row("current", tokenStr(t, ctx.CurrentToken))
	}
	if ctx.PreviousToken != nil {
		row("previous", tokenStr(t, ctx.PreviousToken))
	}
	if ctx.NextToken != nil {
		row("next", tokenStr(t, ctx.NextToken))
	}
	for _, msg := range ctx.SyntaxErrors {
		row("error", t.err.Render(msg))
	}
	return e.write(sb.String())
}

func tokenStr(t theme, tok *parser.Token) string {
	return fmt.Sprintf("%s %q %s", t.kind.Render(tok.Kind.String()), tok.Value, t.span.Render(tok.Position.String()))
}

func (e *TextEncoder) EncodeItems(items []complete.Item) error {
	t := e.theme
	if len(items) == 0 {
		return e.write(t.muted.Render("no completions") + "\n")
	}

	textWidth, typeWidth := 0, 0
	for _, item := range items {
		textWidth = max(textWidth, len(item.Text))
		typeWidth = max(typeWidth, len(item.Type.String()))
	}

	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "%s %s %3d",
			t.value.Render(pad(item.Text, textWidth)),
			t.kind.Render(pad(item.Type.String(), typeWidth)),
			item.Priority,
		)
		if item.InsertText != item.Text {
			fmt.Fprintf(&sb, " %s", t.span.Render("-> "+item.InsertText))
		}
		if item.Description != "" {
			fmt.Fprintf(&sb, " %s", t.muted.Render(item.Description))
		}
		sb.WriteString("\n")
	}
	return e.write(sb.String())
}

func (e *TextEncoder) write(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
