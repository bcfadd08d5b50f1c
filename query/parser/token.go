package parser

import "fmt"

// Position is a byte-offset span into the original query. Line and Column
// are 1-based and describe Start.
type Position struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Contains reports whether offset lies inside p. End is inclusive, so an
// offset sitting between two adjacent tokens is contained by both.
func (p Position) Contains(offset int) bool {
	return p.Start <= offset && offset <= p.End
}

func (p Position) String() string {
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

type TokenKind int

const (
	TokenWhitespace TokenKind = iota
	TokenQuotedString
	TokenColon
	TokenInvalid
	TokenLParen
	TokenRParen
	TokenIdentifier
	TokenAnd
	TokenOr
	TokenComparator
	TokenEOF
)

var tokenKindNames = map[TokenKind]string{
	TokenWhitespace:   "Whitespace",
	TokenQuotedString: "QuotedString",
	TokenColon:        "Colon",
	TokenInvalid:      "Invalid",
	TokenLParen:       "LeftParenthesis",
	TokenRParen:       "RightParenthesis",
	TokenIdentifier:   "Identifier",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenComparator:   "Comparator",
	TokenEOF:          "EOF",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ContextType names a grammar construct that may appear at a position.
type ContextType int

const (
	ContextKey ContextType = iota
	ContextValue
	ContextQuotedString
	ContextLogicalOperator
	ContextComparator
	ContextColon
	ContextLeftParenthesis
	ContextRightParenthesis
)

var contextTypeNames = map[ContextType]string{
	ContextKey:              "key",
	ContextValue:            "value",
	ContextQuotedString:     "quotedString",
	ContextLogicalOperator:  "operator",
	ContextComparator:       "comparator",
	ContextColon:            "colon",
	ContextLeftParenthesis:  "leftParenthesis",
	ContextRightParenthesis: "rightParenthesis",
}

func (c ContextType) String() string {
	if name, ok := contextTypeNames[c]; ok {
		return name
	}
	return "unknown"
}

// ContextTypes lists every ContextType in declaration order.
func ContextTypes() []ContextType {
	return []ContextType{
		ContextKey,
		ContextValue,
		ContextQuotedString,
		ContextLogicalOperator,
		ContextComparator,
		ContextColon,
		ContextLeftParenthesis,
		ContextRightParenthesis,
	}
}

// TokenContext records what the grammar would accept where a token sits.
// Key is the condition key currently open, set for value contexts.
type TokenContext struct {
	Types []ContextType
	Key   string
}

// Has reports whether t is one of the expected types.
func (c *TokenContext) Has(t ContextType) bool {
	if c == nil {
		return false
	}
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

type Token struct {
	Kind     TokenKind
	Value    string
	Position Position
	// Quote is the delimiter of a QuotedString token.
	Quote   byte
	Context *TokenContext
}

// IsWord reports whether the token is text a user types character by
// character, as opposed to punctuation or whitespace.
func (t Token) IsWord() bool {
	switch t.Kind {
	case TokenIdentifier, TokenQuotedString, TokenInvalid, TokenAnd, TokenOr, TokenComparator:
		return true
	}
	return false
}

var operatorKeywords = map[string]TokenKind{
	"AND": TokenAnd,
	"OR":  TokenOr,
}

// LookupOperator classifies an identifier as AND, OR or a plain identifier.
func LookupOperator(word string) TokenKind {
	if kind, ok := operatorKeywords[word]; ok {
		return kind
	}
	return TokenIdentifier
}

// Comparators lists the comparison operators other than the colon, longest
// first.
var Comparators = []string{"<=", ">=", "!=", "==", "<", ">"}
