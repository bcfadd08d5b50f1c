package parser

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrUnexpectedToken = errors.New("unexpected token")

// TokenStream is a forward-only cursor over a token slice. Skipping
// whitespace through CountAndSkipWhitespaces leaves the grammar context on
// the skipped tokens, which is what the completion side reads back.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream wraps tokens, which must end with an EOF token. The stream
// tags tokens in place.
func NewTokenStream(tokens []Token) *TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		end := 0
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Position.End
		}
		tokens = append(tokens, Token{Kind: TokenEOF, Position: Position{Start: end, End: end}})
	}
	return &TokenStream{tokens: tokens}
}

func (s *TokenStream) Tokens() []Token {
	return s.tokens
}

func (s *TokenStream) Current() *Token {
	return &s.tokens[s.pos]
}

// Previous returns the token before the current one, or nil at the start.
func (s *TokenStream) Previous() *Token {
	if s.pos == 0 {
		return nil
	}
	return &s.tokens[s.pos-1]
}

// Consume returns the current token and moves past it. At EOF the stream
// stays put.
func (s *TokenStream) Consume() *Token {
	tok := &s.tokens[s.pos]
	if tok.Kind != TokenEOF {
		s.pos++
	}
	return tok
}

// Expect consumes the current token if it has the given kind. A mismatch
// means the caller did not check the grammar first.
func (s *TokenStream) Expect(kind TokenKind) (*Token, error) {
	tok := s.Current()
	if tok.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s, got %s at %d", ErrUnexpectedToken, kind, tok.Kind, tok.Position.Start)
	}
	return s.Consume(), nil
}

func (s *TokenStream) MatchAny(kinds ...TokenKind) bool {
	cur := s.Current().Kind
	for _, kind := range kinds {
		if cur == kind {
			return true
		}
	}
	return false
}

func (s *TokenStream) IsAtEnd() bool {
	return s.Current().Kind == TokenEOF
}

// CountAndSkipWhitespaces consumes contiguous whitespace, stamping each
// token with ctx, and returns the number of characters skipped.
//
// When there is no whitespace at all between the previous token and the
// current one, the current token is stamped instead so that a cursor in a
// zero-width gap still resolves.
func (s *TokenStream) CountAndSkipWhitespaces(ctx TokenContext) int {
	count := 0
	skipped := false
	for s.Current().Kind == TokenWhitespace {
		tok := s.Consume()
		tok.Context = cloneContext(ctx)
		count += utf8.RuneCountInString(tok.Value)
		skipped = true
	}
	if !skipped {
		prev := s.Previous()
		if prev == nil || prev.Kind != TokenWhitespace {
			s.Tag(ctx)
		}
	}
	return count
}

// Tag stamps ctx on the current token unless it already carries one.
func (s *TokenStream) Tag(ctx TokenContext) {
	tok := s.Current()
	if tok.Context == nil {
		tok.Context = cloneContext(ctx)
	}
}

func cloneContext(ctx TokenContext) *TokenContext {
	types := make([]ContextType, len(ctx.Types))
	copy(types, ctx.Types)
	return &TokenContext{Types: types, Key: ctx.Key}
}
