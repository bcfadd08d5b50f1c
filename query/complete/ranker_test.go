package complete

import (
	"testing"

	"github.com/dhamidi/filterq/query/parser"
)

func statusConfig() Config {
	cfg := DefaultConfig()
	cfg.Keys = []KeyConfig{
		{Name: "status", Description: "Account status", Values: []ValueConfig{
			{Value: "active"}, {Value: "inactive"}, {Value: "pending", Description: "Awaiting review"},
		}},
		{Name: "role", Values: []ValueConfig{{Value: "admin"}, {Value: "super user"}}},
		{Name: "age", ValueType: "number"},
	}
	return cfg
}

func texts(items []Item) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.Text)
	}
	return out
}

func TestRankerScore(t *testing.T) {
	r := NewRanker(DefaultConfig())
	tests := []struct {
		candidate string
		input     string
		want      int
	}{
		{"active", "active", PriorityExact},
		{"Active", "active", PriorityExact},
		{"active", "act", PriorityPrefix},
		{"active", "", PriorityPrefix},
		{"inactive", "act", PrioritySubstring},
		{"inactive", "iae", PriorityFuzzy},
		{"pending", "act", 0},
	}

	for _, tt := range tests {
		if got := r.Score(tt.candidate, tt.input); got != tt.want {
			t.Errorf("Score(%q, %q) = %d, want %d", tt.candidate, tt.input, got, tt.want)
		}
	}
}

func TestRankerScoreOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CaseSensitive = true
	cfg.FuzzyMatch = false
	r := NewRanker(cfg)

	if got := r.Score("Active", "active"); got != 0 {
		t.Errorf("case-sensitive Score = %d, want 0", got)
	}
	if got := r.Score("inactive", "iae"); got != 0 {
		t.Errorf("fuzzy-off Score = %d, want 0", got)
	}
}

func TestRankerValues(t *testing.T) {
	r := NewRanker(statusConfig())

	got := r.Suggest(parser.ContextValue, "act", "status")
	if len(got) != 2 {
		t.Fatalf("got %v, want active and inactive", texts(got))
	}
	if got[0].Text != "active" || got[1].Text != "inactive" {
		t.Errorf("order = %v, want [active inactive]", texts(got))
	}
	if got[0].Priority <= got[1].Priority {
		t.Errorf("priorities = %d, %d, want descending", got[0].Priority, got[1].Priority)
	}

	if got := r.Suggest(parser.ContextValue, "", "unknown"); len(got) != 0 {
		t.Errorf("unknown key got %v, want none", texts(got))
	}
	if got := r.Suggest(parser.ContextValue, "", "age"); len(got) != 0 {
		t.Errorf("key without catalog got %v, want none", texts(got))
	}
	if got := r.Suggest(parser.ContextValue, "", "STATUS"); len(got) != 3 {
		t.Errorf("case-insensitive key lookup got %v, want 3 values", texts(got))
	}
}

func TestRankerInsertText(t *testing.T) {
	r := NewRanker(statusConfig())

	for _, item := range r.Suggest(parser.ContextValue, "", "role") {
		want := item.Text
		if item.Text == "super user" {
			want = `"super user"`
		}
		if item.InsertText != want {
			t.Errorf("InsertText(%q) = %q, want %q", item.Text, item.InsertText, want)
		}
	}

	for _, item := range r.Suggest(parser.ContextQuotedString, "", "role") {
		if want := parser.Quote(item.Text); item.InsertText != want {
			t.Errorf("quoted InsertText(%q) = %q, want %q", item.Text, item.InsertText, want)
		}
		if item.Type != parser.ContextQuotedString {
			t.Errorf("Type = %s, want %s", item.Type, parser.ContextQuotedString)
		}
	}
}

func TestInsertTextQuoting(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"active", "active"},
		{"a b", `"a b"`},
		{"f(x)", `"f(x)"`},
		{`say "hi"`, `"say \"hi\""`},
		{"it's", `"it's"`},
		{"tab\there", `"tab\there"`},
	}
	for _, tt := range tests {
		if got := insertText(tt.value); got != tt.want {
			t.Errorf("insertText(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestRankerFixedCandidates(t *testing.T) {
	r := NewRanker(DefaultConfig())

	if got := texts(r.Suggest(parser.ContextLogicalOperator, "", "")); len(got) != 2 || got[0] != "AND" || got[1] != "OR" {
		t.Errorf("operators = %v, want [AND OR]", got)
	}
	if got := texts(r.Suggest(parser.ContextLogicalOperator, "o", "")); len(got) != 1 || got[0] != "OR" {
		t.Errorf("operators for %q = %v, want [OR]", "o", got)
	}
	if got := r.Suggest(parser.ContextComparator, "", ""); len(got) != 6 {
		t.Errorf("got %d comparators, want 6", len(got))
	}
	if got := texts(r.Suggest(parser.ContextComparator, "!", "")); len(got) != 1 || got[0] != "!=" {
		t.Errorf("comparators for %q = %v, want [!=]", "!", got)
	}
	if got := texts(r.Suggest(parser.ContextColon, "", "")); len(got) != 1 || got[0] != ":" {
		t.Errorf("colon = %v, want [:]", got)
	}
	if got := r.Suggest(parser.ContextLeftParenthesis, "", ""); len(got) != 0 {
		t.Errorf("parentheses without grouping = %v, want none", texts(got))
	}

	cfg := DefaultConfig()
	cfg.SuggestGrouping = true
	r = NewRanker(cfg)
	if got := texts(r.Suggest(parser.ContextLeftParenthesis, "", "")); len(got) != 1 || got[0] != "(" {
		t.Errorf("left parenthesis = %v, want [(]", got)
	}
	if got := texts(r.Suggest(parser.ContextRightParenthesis, "", "")); len(got) != 1 || got[0] != ")" {
		t.Errorf("right parenthesis = %v, want [)]", got)
	}
}

func TestRankerHandlesEveryContextType(t *testing.T) {
	r := NewRanker(statusConfig())
	for _, ct := range parser.ContextTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			for _, item := range r.Suggest(ct, "", "status") {
				if item.Type != ct {
					t.Errorf("item %q has Type %s, want %s", item.Text, item.Type, ct)
				}
			}
		})
	}
}

func TestRankerMaxSuggestions(t *testing.T) {
	cfg := statusConfig()
	cfg.MaxSuggestions = 2
	r := NewRanker(cfg)
	got := r.Suggest(parser.ContextKey, "", "")
	if len(got) != 2 {
		t.Fatalf("got %d keys, want 2", len(got))
	}
	if got[0].Text != "status" || got[1].Text != "role" {
		t.Errorf("keys = %v, want configuration order for equal scores", texts(got))
	}

	cfg.MaxSuggestions = 0
	if got := NewRanker(cfg).Suggest(parser.ContextKey, "", ""); len(got) != 3 {
		t.Errorf("unlimited got %d keys, want 3", len(got))
	}
}

func TestKeyDescription(t *testing.T) {
	r := NewRanker(statusConfig())
	got := map[string]string{}
	for _, item := range r.Suggest(parser.ContextKey, "", "") {
		got[item.Text] = item.Description
	}
	if got["status"] != "Account status" {
		t.Errorf("status description = %q", got["status"])
	}
	if got["age"] != "number" {
		t.Errorf("age description = %q", got["age"])
	}
}
