package complete

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dhamidi/filterq/query/parser"
)

const (
	PriorityExact     = 100
	PriorityPrefix    = 80
	PrioritySubstring = 60
	PriorityFuzzy     = 40
)

// Item is one completion candidate.
type Item struct {
	Text        string             `json:"text"`
	Type        parser.ContextType `json:"type"`
	Description string             `json:"description,omitempty"`
	InsertText  string             `json:"insertText"`
	Priority    int                `json:"priority"`
}

var comparatorItems = []struct {
	text, description string
}{
	{"==", "equals"},
	{"!=", "not equals"},
	{">", "greater than"},
	{">=", "greater than or equal"},
	{"<", "less than"},
	{"<=", "less than or equal"},
}

// Ranker scores candidates for one context type against what the user has
// typed so far.
type Ranker struct {
	cfg Config
}

func NewRanker(cfg Config) *Ranker {
	return &Ranker{cfg: cfg.clone()}
}

// Suggest returns the candidates for t matching input, best first. key
// selects the value catalog for value contexts.
func (r *Ranker) Suggest(t parser.ContextType, input, key string) []Item {
	var candidates []Item

	switch t {
	case parser.ContextKey:
		for _, k := range r.cfg.Keys {
			candidates = append(candidates, Item{Text: k.Name, Type: t, Description: keyDescription(k), InsertText: k.Name})
		}
	case parser.ContextValue:
		for _, v := range r.values(key) {
			candidates = append(candidates, Item{Text: v.Value, Type: t, Description: v.Description, InsertText: insertText(v.Value)})
		}
	case parser.ContextQuotedString:
		for _, v := range r.values(key) {
			candidates = append(candidates, Item{Text: v.Value, Type: t, Description: v.Description, InsertText: parser.Quote(v.Value)})
		}
	case parser.ContextLogicalOperator:
		candidates = append(candidates,
			Item{Text: "AND", Type: t, Description: "both conditions must match", InsertText: "AND"},
			Item{Text: "OR", Type: t, Description: "either condition may match", InsertText: "OR"},
		)
	case parser.ContextComparator:
		for _, c := range comparatorItems {
			candidates = append(candidates, Item{Text: c.text, Type: t, Description: c.description, InsertText: c.text})
		}
	case parser.ContextColon:
		candidates = append(candidates, Item{Text: ":", Type: t, Description: "matches", InsertText: ":"})
	case parser.ContextLeftParenthesis:
		if r.cfg.SuggestGrouping {
			candidates = append(candidates, Item{Text: "(", Type: t, Description: "start a group", InsertText: "("})
		}
	case parser.ContextRightParenthesis:
		if r.cfg.SuggestGrouping {
			candidates = append(candidates, Item{Text: ")", Type: t, Description: "close the group", InsertText: ")"})
		}
	default:
		panic(fmt.Sprintf("complete: unhandled context type %d", t))
	}

	return r.rank(candidates, input)
}

func (r *Ranker) values(key string) []ValueConfig {
	if key == "" {
		return nil
	}
	for _, k := range r.cfg.Keys {
		if k.Name == key || (!r.cfg.CaseSensitive && strings.EqualFold(k.Name, key)) {
			return k.Values
		}
	}
	return nil
}

func (r *Ranker) rank(candidates []Item, input string) []Item {
	ranked := candidates[:0]
	for _, item := range candidates {
		score := r.Score(item.Text, input)
		if score == 0 {
			continue
		}
		item.Priority = score
		ranked = append(ranked, item)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	if r.cfg.MaxSuggestions > 0 && len(ranked) > r.cfg.MaxSuggestions {
		ranked = ranked[:r.cfg.MaxSuggestions]
	}
	return ranked
}

// Score rates how well candidate matches input. Zero means no match. An
// empty input matches everything as a prefix.
func (r *Ranker) Score(candidate, input string) int {
	if !r.cfg.CaseSensitive {
		candidate = strings.ToLower(candidate)
		input = strings.ToLower(input)
	}
	switch {
	case candidate == input:
		return PriorityExact
	case strings.HasPrefix(candidate, input):
		return PriorityPrefix
	case strings.Contains(candidate, input):
		return PrioritySubstring
	case r.cfg.FuzzyMatch && isSubsequence(input, candidate):
		return PriorityFuzzy
	}
	return 0
}

// isSubsequence reports whether the runes of needle appear in haystack in
// order.
func isSubsequence(needle, haystack string) bool {
	rest := []rune(needle)
	if len(rest) == 0 {
		return true
	}
	for _, r := range haystack {
		if r == rest[0] {
			rest = rest[1:]
			if len(rest) == 0 {
				return true
			}
		}
	}
	return false
}

// insertText quotes values that would not survive as a bare value.
func insertText(value string) string {
	if value == "" || strings.IndexFunc(value, unicode.IsSpace) >= 0 || strings.ContainsAny(value, `()"'`) {
		return parser.Quote(value)
	}
	return value
}

func keyDescription(k KeyConfig) string {
	switch {
	case k.Description != "" && k.ValueType != "":
		return fmt.Sprintf("%s (%s)", k.Description, k.ValueType)
	case k.ValueType != "":
		return k.ValueType
	}
	return k.Description
}
