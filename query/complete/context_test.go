package complete

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/filterq/query/parser"
)

func analyze(query string, cursor int) Context {
	return AnalyzeContext(parser.Parse(query), cursor, query)
}

func TestAnalyzeContext(t *testing.T) {
	var (
		primary      = []parser.ContextType{parser.ContextKey, parser.ContextLeftParenthesis}
		afterKey     = []parser.ContextType{parser.ContextComparator, parser.ContextColon}
		value        = []parser.ContextType{parser.ContextValue}
		quoted       = []parser.ContextType{parser.ContextQuotedString}
		operator     = []parser.ContextType{parser.ContextLogicalOperator}
		operatorOrRP = []parser.ContextType{parser.ContextLogicalOperator, parser.ContextRightParenthesis}
	)

	tests := []struct {
		name       string
		query      string
		cursor     int
		want       []parser.ContextType
		key        string
		incomplete string
		inQuotes   bool
	}{
		{"empty", "", 0, primary, "", "", false},
		{"typing key", "sta", 3, primary, "", "sta", false},
		{"after key", "status ", 7, afterKey, "", "", false},
		{"comparator prefix", "status !", 8, []parser.ContextType{parser.ContextComparator}, "", "!", false},
		{"after colon", "status:", 7, value, "status", "", false},
		{"after colon space", "status: ", 8, value, "status", "", false},
		{"typing value", "status: act", 11, value, "status", "act", false},
		{"typing value no space", "status:act", 10, value, "status", "act", false},
		{"value after comparator", "age>=1", 6, value, "age", "1", false},
		{"before value", "a: b", 3, value, "a", "b", false},
		{"after value", "status: active ", 15, operator, "", "", false},
		{"typing operator", "a: b an", 7, operator, "", "an", false},
		{"typing AND", "a: b AND", 8, operator, "", "AND", false},
		{"after operator", "a: b AND ", 9, primary, "", "", false},
		{"open group", "(", 1, primary, "", "", false},
		{"inside group", "(role: admin ", 13, operatorOrRP, "", "", false},
		{"after group", "(role: admin)", 13, operator, "", "", false},
		{"unterminated quote", `role: "sup`, 10, quoted, "role", "sup", true},
		{"inside quotes", `role: "super user"`, 9, quoted, "role", "super user", true},
		{"after closing quote", `role: "super user"`, 18, operator, "", "", false},
		{"space after closing quote", `role: "super user" `, 19, operator, "", "", false},
		{"cursor clamped", "a:b", 99, value, "a", "b", false},
		{"negative cursor", "a:b", -4, primary, "", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := analyze(tt.query, tt.cursor)
			if diff := cmp.Diff(tt.want, ctx.ExpectedTypes); diff != "" {
				t.Errorf("ExpectedTypes mismatch (-want +got):\n%s", diff)
			}
			if ctx.Key != tt.key {
				t.Errorf("Key = %q, want %q", ctx.Key, tt.key)
			}
			if ctx.IncompleteValue != tt.incomplete {
				t.Errorf("IncompleteValue = %q, want %q", ctx.IncompleteValue, tt.incomplete)
			}
			if ctx.IsInQuotes != tt.inQuotes {
				t.Errorf("IsInQuotes = %v, want %v", ctx.IsInQuotes, tt.inQuotes)
			}
		})
	}
}

func TestAnalyzeContextFlags(t *testing.T) {
	ctx := analyze("status ", 7)
	if !ctx.CanInsertComparator || ctx.CanInsertLogicalOperator || ctx.CanStartNewGroup {
		t.Errorf("flags = %v/%v/%v, want comparator only",
			ctx.CanInsertComparator, ctx.CanInsertLogicalOperator, ctx.CanStartNewGroup)
	}

	ctx = analyze("", 0)
	if !ctx.CanStartNewGroup {
		t.Errorf("CanStartNewGroup = false on empty query")
	}

	ctx = analyze("a:b ", 4)
	if !ctx.CanInsertLogicalOperator {
		t.Errorf("CanInsertLogicalOperator = false after a condition")
	}
}

func TestAnalyzeContextTokens(t *testing.T) {
	ctx := analyze("a: b AND c: d", 6)
	if ctx.CurrentToken == nil || ctx.CurrentToken.Kind != parser.TokenAnd {
		t.Fatalf("CurrentToken = %v, want AND", ctx.CurrentToken)
	}
	if ctx.PreviousToken == nil || ctx.PreviousToken.Value != "b" {
		t.Errorf("PreviousToken = %v, want b", ctx.PreviousToken)
	}
	if ctx.NextToken == nil || ctx.NextToken.Value != "c" {
		t.Errorf("NextToken = %v, want c", ctx.NextToken)
	}

	ctx = analyze("a", 1)
	if ctx.PreviousToken != nil || ctx.NextToken != nil {
		t.Errorf("neighbours = %v/%v, want none", ctx.PreviousToken, ctx.NextToken)
	}
}

func TestAnalyzeContextErrors(t *testing.T) {
	ctx := analyze("(a:b", 4)
	if !ctx.IsPartiallyCorrect {
		t.Errorf("IsPartiallyCorrect = false for unclosed group")
	}
	if len(ctx.SyntaxErrors) != 1 {
		t.Errorf("SyntaxErrors = %v, want one", ctx.SyntaxErrors)
	}

	ctx = analyze("a:b", 3)
	if ctx.IsPartiallyCorrect {
		t.Errorf("IsPartiallyCorrect = true for a valid query")
	}
	if ctx.SyntaxErrors == nil || len(ctx.SyntaxErrors) != 0 {
		t.Errorf("SyntaxErrors = %#v, want empty", ctx.SyntaxErrors)
	}

	ctx = analyze(")", 1)
	if ctx.IsPartiallyCorrect {
		t.Errorf("IsPartiallyCorrect = true without an AST")
	}
}

func TestAnalyzeContextIncompleteRange(t *testing.T) {
	query := `role: "super us`
	ctx := analyze(query, len(query))
	if ctx.IncompleteRange.Start != 6 || ctx.IncompleteRange.End != len(query) {
		t.Errorf("IncompleteRange = %s, want 6-%d", ctx.IncompleteRange, len(query))
	}

	ctx = analyze("status: act", 9)
	if ctx.IncompleteRange.Start != 8 || ctx.IncompleteRange.End != 11 {
		t.Errorf("IncompleteRange = %s, want 8-11", ctx.IncompleteRange)
	}
	if ctx.IncompleteValue != "act" {
		t.Errorf("IncompleteValue = %q, want %q", ctx.IncompleteValue, "act")
	}
}
