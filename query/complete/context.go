package complete

import "github.com/dhamidi/filterq/query/parser"

// Context describes what can be typed at a cursor position.
type Context struct {
	CursorPosition int                  `json:"cursorPosition"`
	CurrentToken   *parser.Token        `json:"currentToken,omitempty"`
	PreviousToken  *parser.Token        `json:"previousToken,omitempty"`
	NextToken      *parser.Token        `json:"nextToken,omitempty"`
	ExpectedTypes  []parser.ContextType `json:"expectedTypes"`
	// Key is the condition key a value context belongs to.
	Key                      string          `json:"key,omitempty"`
	IsInQuotes               bool            `json:"isInQuotes"`
	IsPartiallyCorrect       bool            `json:"isPartiallyCorrect"`
	CanInsertLogicalOperator bool            `json:"canInsertLogicalOperator"`
	CanInsertComparator      bool            `json:"canInsertComparator"`
	CanStartNewGroup         bool            `json:"canStartNewGroup"`
	IncompleteValue          string          `json:"incompleteValue"`
	IncompleteRange          parser.Position `json:"incompleteRange"`
	SyntaxErrors             []string        `json:"syntaxErrors"`
}

// Has reports whether t is expected at the cursor.
func (c Context) Has(t parser.ContextType) bool {
	for _, ct := range c.ExpectedTypes {
		if ct == t {
			return true
		}
	}
	return false
}

var defaultContext = parser.TokenContext{
	Types: []parser.ContextType{parser.ContextKey, parser.ContextLeftParenthesis},
}

// AnalyzeContext resolves the grammar context at cursor from the tags the
// parser left on result.Tokens.
//
// A word being typed (the cursor inside it or right at its end) uses its
// own tag, or the tag of the whitespace in front of it. Otherwise the
// tagged whitespace around the cursor, or a token tagged at a gap starting
// exactly at the cursor, decides. Failing both, the closest tag to the
// left is used, and a key or group is expected when there is none.
func AnalyzeContext(result parser.ParseResult, cursor int, query string) Context {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(query) {
		cursor = len(query)
	}

	tokens := result.Tokens
	current := -1
	var tag *parser.TokenContext

	if i := wordAt(tokens, cursor); i >= 0 {
		current = i
		tag = tokens[i].Context
		if tag == nil && i > 0 && tokens[i-1].Kind == parser.TokenWhitespace {
			tag = tokens[i-1].Context
		}
		if tag == nil {
			tag = tagBefore(tokens, tokens[i].Position.Start)
		}
	} else if i := tagAt(tokens, cursor); i >= 0 {
		current = i
		tag = tokens[i].Context
	} else {
		current = tokenAt(tokens, cursor)
		tag = tagBefore(tokens, cursor)
	}
	if tag == nil {
		tag = &defaultContext
	}

	ctx := Context{
		CursorPosition:     cursor,
		Key:                tag.Key,
		IsPartiallyCorrect: !result.Success && result.AST != nil,
		SyntaxErrors:       []string{},
	}
	for _, err := range result.Errors {
		ctx.SyntaxErrors = append(ctx.SyntaxErrors, err.Message)
	}

	if current >= 0 {
		ctx.CurrentToken = tokenCopy(tokens, current)
		ctx.PreviousToken = tokenCopy(tokens, neighbour(tokens, current, -1))
		ctx.NextToken = tokenCopy(tokens, neighbour(tokens, current, +1))
		ctx.IsInQuotes = inQuotes(tokens[current], cursor)
	}

	ctx.ExpectedTypes = make([]parser.ContextType, 0, len(tag.Types))
	for _, t := range tag.Types {
		if t == parser.ContextValue && ctx.IsInQuotes {
			t = parser.ContextQuotedString
		}
		ctx.ExpectedTypes = append(ctx.ExpectedTypes, t)
	}

	switch {
	case ctx.IsInQuotes:
		tok := tokens[current]
		ctx.IncompleteValue = quotedContent(tok)
		ctx.IncompleteRange = tok.Position
	default:
		lo, hi := 0, len(query)
		if current >= 0 && tokens[current].IsWord() {
			lo, hi = tokens[current].Position.Start, tokens[current].Position.End
		}
		ctx.IncompleteRange = incompleteRun(query, cursor, lo, hi)
		ctx.IncompleteValue = query[ctx.IncompleteRange.Start:ctx.IncompleteRange.End]
	}

	ctx.CanInsertLogicalOperator = ctx.Has(parser.ContextLogicalOperator)
	ctx.CanInsertComparator = ctx.Has(parser.ContextComparator) || ctx.Has(parser.ContextColon)
	ctx.CanStartNewGroup = ctx.Has(parser.ContextLeftParenthesis)
	return ctx
}

// wordAt finds a word token the cursor is inside of or right behind. A
// quoted string is finished once its closing quote is typed, so a cursor
// right behind it is not inside the word.
func wordAt(tokens []parser.Token, cursor int) int {
	for i, tok := range tokens {
		if !tok.IsWord() || cursor <= tok.Position.Start || cursor > tok.Position.End {
			continue
		}
		if tok.Kind == parser.TokenQuotedString && cursor == tok.Position.End {
			continue
		}
		return i
	}
	return -1
}

// tagAt finds the first tagged token covering cursor. Whitespace covers its
// whole span including both ends; other tokens carry the tag of the gap in
// front of them and so cover only their start.
func tagAt(tokens []parser.Token, cursor int) int {
	for i, tok := range tokens {
		if tok.Context == nil {
			continue
		}
		if tok.Kind == parser.TokenWhitespace && tok.Position.Contains(cursor) {
			return i
		}
		if tok.Kind != parser.TokenWhitespace && tok.Position.Start == cursor {
			return i
		}
	}
	return -1
}

func tokenAt(tokens []parser.Token, cursor int) int {
	for i, tok := range tokens {
		if tok.Position.Contains(cursor) {
			return i
		}
	}
	return -1
}

// tagBefore returns the tag of the closest tagged token ending at or before
// offset.
func tagBefore(tokens []parser.Token, offset int) *parser.TokenContext {
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if tok.Context != nil && tok.Position.End <= offset {
			return tok.Context
		}
	}
	return nil
}

// neighbour walks from i in direction dir to the next token that is neither
// whitespace nor EOF.
func neighbour(tokens []parser.Token, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(tokens); j += dir {
		switch tokens[j].Kind {
		case parser.TokenWhitespace:
			continue
		case parser.TokenEOF:
			return -1
		}
		return j
	}
	return -1
}

func tokenCopy(tokens []parser.Token, i int) *parser.Token {
	if i < 0 {
		return nil
	}
	tok := tokens[i]
	return &tok
}

func inQuotes(tok parser.Token, cursor int) bool {
	switch tok.Kind {
	case parser.TokenQuotedString:
		return tok.Position.Start < cursor && cursor < tok.Position.End
	case parser.TokenInvalid:
		return isQuote(tok.Value) && tok.Position.Start < cursor
	}
	return false
}

func isQuote(raw string) bool {
	return raw != "" && (raw[0] == '"' || raw[0] == '\'')
}

// quotedContent is the text between the quotes. Unterminated strings are
// returned raw.
func quotedContent(tok parser.Token) string {
	if tok.Kind == parser.TokenQuotedString {
		return tok.Value
	}
	return tok.Value[1:]
}

// incompleteRun is the span of identifier and comparator characters that
// touches cursor, limited to [lo, hi).
func incompleteRun(query string, cursor, lo, hi int) parser.Position {
	start := cursor
	for start > lo && isIncompleteChar(query[start-1]) {
		start--
	}
	end := cursor
	for end < hi && isIncompleteChar(query[end]) {
		end++
	}
	return parser.Position{Start: start, End: end}
}

func isIncompleteChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	switch ch {
	case '_', '=', '!', '<', '>', '~':
		return true
	}
	return false
}
