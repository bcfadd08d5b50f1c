package complete

import (
	"sort"
	"strings"
	"testing"

	"github.com/dhamidi/filterq/query/parser"
)

func newStatusEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithConfig(statusConfig())}, opts...)...)
}

func TestEngineEmptyQuery(t *testing.T) {
	e := newStatusEngine()
	items := e.GetCompletions("", 0)

	got := texts(items)
	sort.Strings(got)
	want := []string{"age", "role", "status"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("completions = %v, want %v", got, want)
	}
	for _, item := range items {
		if item.Type != parser.ContextKey {
			t.Errorf("item %q has Type %s, want key", item.Text, item.Type)
		}
	}
}

func TestEngineGrouping(t *testing.T) {
	e := newStatusEngine(WithSuggestGrouping(true))
	if got := e.GetCompletions("", 0); len(got) != 4 {
		t.Errorf("got %v, want three keys and (", texts(got))
	}

	got := texts(e.GetCompletions("(status: active ", 16))
	sort.Strings(got)
	if strings.Join(got, ",") != "),AND,OR" {
		t.Errorf("completions = %v, want ), AND, OR", got)
	}
}

func TestEngineValueSuggestions(t *testing.T) {
	e := newStatusEngine()
	items := e.GetValueSuggestions("status", "act")
	if len(items) != 2 {
		t.Fatalf("got %v, want active and inactive", texts(items))
	}
	if items[0].Text != "active" || items[1].Text != "inactive" {
		t.Errorf("order = %v, want [active inactive]", texts(items))
	}
	for _, item := range items {
		if item.Text == "pending" {
			t.Errorf("pending should not match %q", "act")
		}
	}
}

func TestEngineGetCompletions(t *testing.T) {
	e := newStatusEngine()
	tests := []struct {
		query  string
		cursor int
		want   []string
	}{
		{"status: act", 11, []string{"active", "inactive"}},
		{"status: ", 8, []string{"active", "inactive", "pending"}},
		{"status ", 7, []string{"!=", ":", "<", "<=", "==", ">", ">="}},
		{"status: active ", 15, []string{"AND", "OR"}},
		{`role: "super user"`, 18, []string{"AND", "OR"}},
		{`role: 'admin' AND`, 13, []string{"AND", "OR"}},
		{"status: active AND ", 19, []string{"age", "role", "status"}},
		{"st", 2, []string{"status"}},
		{"status: zzz", 11, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := texts(e.GetCompletions(tt.query, tt.cursor))
			sort.Strings(got)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("completions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineQuotedValues(t *testing.T) {
	e := newStatusEngine()
	items := e.GetCompletions(`role: "su`, 9)
	if len(items) != 1 {
		t.Fatalf("got %v, want one item", texts(items))
	}
	if items[0].Text != "super user" || items[0].InsertText != `"super user"` {
		t.Errorf("item = %+v, want quoted super user", items[0])
	}
	if items[0].Type != parser.ContextQuotedString {
		t.Errorf("Type = %s, want %s", items[0].Type, parser.ContextQuotedString)
	}
}

func TestEngineSortedByPriority(t *testing.T) {
	e := newStatusEngine()
	items := e.GetCompletions("status: a", 9)
	for i := 1; i < len(items); i++ {
		if items[i].Priority > items[i-1].Priority {
			t.Errorf("items not sorted: %v", items)
		}
	}
}

func TestEngineDeduplicates(t *testing.T) {
	e := newStatusEngine()
	ctx := Context{
		ExpectedTypes: []parser.ContextType{parser.ContextKey, parser.ContextKey},
	}
	if got := e.Complete(ctx, ""); len(got) != 3 {
		t.Errorf("got %v, want three distinct keys", texts(got))
	}
}

func TestEngineKeyFallback(t *testing.T) {
	e := newStatusEngine()
	ctx := Context{
		CursorPosition: 8,
		ExpectedTypes:  []parser.ContextType{parser.ContextValue},
	}
	if got := e.Complete(ctx, "status: "); len(got) != 3 {
		t.Errorf("got %v, want the status values", texts(got))
	}

	if got := keyBeforeColon("a: b AND role : x", 17); got != "role" {
		t.Errorf("keyBeforeColon = %q, want %q", got, "role")
	}
	if got := keyBeforeColon("no colon", 8); got != "" {
		t.Errorf("keyBeforeColon = %q, want empty", got)
	}
}

func TestEngineUpdateConfigIsImmutable(t *testing.T) {
	e := newStatusEngine()
	limited := e.UpdateConfig(WithMaxSuggestions(1))

	if got := e.Config().MaxSuggestions; got != DefaultMaxSuggestions {
		t.Errorf("original MaxSuggestions = %d, want %d", got, DefaultMaxSuggestions)
	}
	if got := limited.Config().MaxSuggestions; got != 1 {
		t.Errorf("updated MaxSuggestions = %d, want 1", got)
	}
	if got := limited.GetKeySuggestions(""); len(got) != 1 {
		t.Errorf("updated engine returned %d keys, want 1", len(got))
	}
	if got := e.GetKeySuggestions(""); len(got) != 3 {
		t.Errorf("original engine returned %d keys, want 3", len(got))
	}
}

func TestEngineWithConfigCopies(t *testing.T) {
	cfg := statusConfig()
	e := NewEngine().WithConfig(cfg)

	cfg.Keys[0].Name = "changed"
	cfg.Keys[0].Values[0].Value = "changed"

	if _, ok := e.Config().Key("status"); !ok {
		t.Errorf("engine saw caller's change to Keys")
	}
	if got := e.GetValueSuggestions("status", "active"); len(got) == 0 || got[0].Text != "active" {
		t.Errorf("engine saw caller's change to Values: %v", texts(got))
	}

	out := e.Config()
	out.Keys[0].Name = "mutated"
	if _, ok := e.Config().Key("status"); !ok {
		t.Errorf("Config() exposed internal state")
	}
}

func TestEngineCaseSensitive(t *testing.T) {
	e := newStatusEngine(WithCaseSensitive(true))
	if got := e.GetKeySuggestions("S"); len(got) != 0 {
		t.Errorf("case-sensitive got %v, want none", texts(got))
	}
	if got := newStatusEngine().GetKeySuggestions("S"); len(got) != 1 {
		t.Errorf("case-insensitive got %v, want status", texts(got))
	}
}

func TestEngineFuzzy(t *testing.T) {
	if got := newStatusEngine().GetValueSuggestions("status", "atv"); len(got) != 2 {
		t.Errorf("fuzzy got %v, want active and inactive", texts(got))
	}
	if got := newStatusEngine(WithFuzzyMatch(false)).GetValueSuggestions("status", "atv"); len(got) != 0 {
		t.Errorf("without fuzzy got %v, want none", texts(got))
	}
}

func TestEngineOperatorSuggestions(t *testing.T) {
	got := texts(newStatusEngine().GetOperatorSuggestions("a"))
	if len(got) != 1 || got[0] != "AND" {
		t.Errorf("operators = %v, want [AND]", got)
	}
}

func TestEngineHasCompletions(t *testing.T) {
	e := newStatusEngine()
	if !e.HasCompletions("sta", 3) {
		t.Errorf("HasCompletions(sta) = false")
	}
	if e.HasCompletions("status: zzz", 11) {
		t.Errorf("HasCompletions(status: zzz) = true")
	}
}

func TestEngineStats(t *testing.T) {
	stats := newStatusEngine().GetCompletionStats("status ", 7)
	if stats.Total != 7 {
		t.Errorf("Total = %d, want 7", stats.Total)
	}
	if stats.ByType[parser.ContextComparator] != 6 {
		t.Errorf("comparators = %d, want 6", stats.ByType[parser.ContextComparator])
	}
	if stats.ByType[parser.ContextColon] != 1 {
		t.Errorf("colons = %d, want 1", stats.ByType[parser.ContextColon])
	}
	if !stats.Context.CanInsertComparator {
		t.Errorf("Context.CanInsertComparator = false")
	}
}

func TestEngineParserOptions(t *testing.T) {
	e := newStatusEngine(WithParserOptions(parser.WithLexerOptions(parser.WithCaseSensitiveOperators())))
	if e.Parse("a:b and c:d").Success {
		t.Errorf("lower-case operator accepted with case-sensitive operators")
	}
	if !newStatusEngine().Parse("a:b and c:d").Success {
		t.Errorf("lower-case operator rejected by default")
	}
}
