package complete

import (
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/filterq/query/parser"
)

// Engine answers completion requests for one immutable configuration. It is
// safe for concurrent use; reconfiguring returns a new Engine.
type Engine struct {
	cfg    Config
	ranker *Ranker
	log    commonlog.Logger
}

func NewEngine(opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newEngine(cfg)
}

func newEngine(cfg Config) *Engine {
	cfg = cfg.clone()
	return &Engine{
		cfg:    cfg,
		ranker: NewRanker(cfg),
		log:    commonlog.GetLogger("filterq.complete"),
	}
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// WithConfig returns an engine using cfg. Parser options of e are kept.
func (e *Engine) WithConfig(cfg Config) *Engine {
	next := cfg.clone()
	next.parserOpts = append(e.cfg.clone().parserOpts, cfg.parserOpts...)
	return newEngine(next)
}

// UpdateConfig returns an engine with opts applied on top of e's
// configuration.
func (e *Engine) UpdateConfig(opts ...Option) *Engine {
	cfg := e.cfg.clone()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newEngine(cfg)
}

// Parse parses query with the engine's parser options.
func (e *Engine) Parse(query string) parser.ParseResult {
	return parser.Parse(query, e.cfg.parserOpts...)
}

func (e *Engine) GetContext(query string, cursor int) Context {
	return AnalyzeContext(e.Parse(query), cursor, query)
}

// GetCompletions returns every suggestion for the cursor position, best
// first.
func (e *Engine) GetCompletions(query string, cursor int) []Item {
	ctx := e.GetContext(query, cursor)
	items := e.Complete(ctx, query)
	e.log.Debug("completions", "query", query, "cursor", ctx.CursorPosition,
		"expected", len(ctx.ExpectedTypes), "items", len(items))
	return items
}

// Complete produces the suggestions for an already resolved context.
func (e *Engine) Complete(ctx Context, query string) []Item {
	type itemKey struct {
		t    parser.ContextType
		text string
	}
	seen := make(map[itemKey]int)
	var items []Item

	for _, t := range ctx.ExpectedTypes {
		key := ""
		if t == parser.ContextValue || t == parser.ContextQuotedString {
			key = ctx.Key
			if key == "" {
				key = keyBeforeColon(query, ctx.CursorPosition)
			}
		}
		for _, item := range e.ranker.Suggest(t, ctx.IncompleteValue, key) {
			k := itemKey{item.Type, item.Text}
			if i, ok := seen[k]; ok {
				if item.Priority > items[i].Priority {
					items[i] = item
				}
				continue
			}
			seen[k] = len(items)
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority > items[j].Priority
	})
	return items
}

func (e *Engine) HasCompletions(query string, cursor int) bool {
	return len(e.GetCompletions(query, cursor)) > 0
}

func (e *Engine) GetKeySuggestions(input string) []Item {
	return e.ranker.Suggest(parser.ContextKey, input, "")
}

func (e *Engine) GetValueSuggestions(key, input string) []Item {
	return e.ranker.Suggest(parser.ContextValue, input, key)
}

func (e *Engine) GetOperatorSuggestions(input string) []Item {
	return e.ranker.Suggest(parser.ContextLogicalOperator, input, "")
}

type Stats struct {
	Total   int                        `json:"total"`
	ByType  map[parser.ContextType]int `json:"byType"`
	Context Context                    `json:"context"`
}

func (e *Engine) GetCompletionStats(query string, cursor int) Stats {
	ctx := e.GetContext(query, cursor)
	items := e.Complete(ctx, query)
	stats := Stats{
		Total:   len(items),
		ByType:  make(map[parser.ContextType]int),
		Context: ctx,
	}
	for _, item := range items {
		stats.ByType[item.Type]++
	}
	return stats
}

// keyBeforeColon finds the identifier in front of the closest ':' left of
// cursor.
func keyBeforeColon(query string, cursor int) string {
	if cursor > len(query) {
		cursor = len(query)
	}
	colon := strings.LastIndexByte(query[:cursor], ':')
	if colon < 0 {
		return ""
	}
	end := colon
	for end > 0 && (query[end-1] == ' ' || query[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && isKeyChar(query[start-1]) {
		start--
	}
	return query[start:end]
}

func isKeyChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
