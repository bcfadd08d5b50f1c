package parser

import (
	"fmt"
	"strings"
)

const DefaultMaxErrors = 10

type Option func(*Parser)

// WithMaxErrors sets how many errors are collected before parsing gives up.
func WithMaxErrors(n int) Option {
	return func(p *Parser) {
		p.maxErrors = n
	}
}

func WithLexerOptions(opts ...LexerOption) Option {
	return func(p *Parser) {
		p.lexerOpts = append(p.lexerOpts, opts...)
	}
}

type ParseResult struct {
	Success bool
	AST     *QueryExpression
	Errors  []ParseError
	Tokens  []Token
}

type Parser struct {
	stream     *TokenStream
	errors     []ParseError
	maxErrors  int
	openParens int
	lexerOpts  []LexerOption
}

// bailout unwinds the parser back to Parse.
type bailout struct {
	err ParseError
}

// Parse tokenizes and parses input. It never panics; malformed input yields
// a best-effort AST plus errors, and the tokens always carry the grammar
// context the parser saw at each whitespace gap.
func Parse(input string, opts ...Option) (result ParseResult) {
	p := &Parser{maxErrors: DefaultMaxErrors}
	for _, opt := range opts {
		opt(p)
	}
	p.stream = NewTokenStream(Tokenize(input, p.lexerOpts...))

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		b, ok := r.(bailout)
		if !ok {
			b = bailout{err: ParseError{
				Message:  fmt.Sprintf("internal parser error: %v", r),
				Position: p.stream.Current().Position,
				Code:     CodeSyntaxError,
				Reason:   ReasonInternal,
			}}
		}
		result = ParseResult{
			Success: false,
			Errors:  append(p.errors, b.err),
			Tokens:  p.stream.Tokens(),
		}
	}()

	return p.parse()
}

func (p *Parser) parse() ParseResult {
	p.stream.CountAndSkipWhitespaces(ctxPrimary())
	if p.stream.IsAtEnd() {
		p.addError(CodeEmptyExpression, ReasonEmptyQuery, p.stream.Current().Position, "Empty query")
		return p.result(nil)
	}

	expr := p.parseOrExpression()
	p.stream.CountAndSkipWhitespaces(ctxAfterCondition(0))

	if !p.stream.IsAtEnd() {
		tok := p.stream.Current()
		if tok.Kind == TokenRParen {
			p.addError(CodeUnbalancedParens, ReasonUnexpectedClosingParen, tok.Position,
				"Unexpected ')' without matching '('")
		} else {
			if isOperatorPrefix(tok.Value) {
				p.stream.Tag(TokenContext{Types: []ContextType{ContextLogicalOperator}})
			}
			p.addError(CodeUnexpectedToken, ReasonExpectedOperator, tok.Position,
				fmt.Sprintf("Expected AND or OR, found %s", describe(tok)))
		}
	}

	if expr == nil {
		return p.result(nil)
	}
	return p.result(NewQuery(expr))
}

func (p *Parser) result(ast *QueryExpression) ParseResult {
	return ParseResult{
		Success: len(p.errors) == 0 && ast != nil,
		AST:     ast,
		Errors:  p.errors,
		Tokens:  p.stream.Tokens(),
	}
}

func (p *Parser) parseOrExpression() Expression {
	left := p.parseAndExpression()
	for p.stream.MatchAny(TokenOr) {
		op := NewOperator(p.stream.Consume())
		p.stream.CountAndSkipWhitespaces(ctxPrimary())
		right := p.parseAndExpression()
		left = NewBoolean(op, left, right)
	}
	return left
}

func (p *Parser) parseAndExpression() Expression {
	left := p.parsePrimaryExpression()
	for p.stream.MatchAny(TokenAnd) {
		op := NewOperator(p.stream.Consume())
		p.stream.CountAndSkipWhitespaces(ctxPrimary())
		right := p.parsePrimaryExpression()
		left = NewBoolean(op, left, right)
	}
	return left
}

func (p *Parser) parsePrimaryExpression() Expression {
	if p.stream.MatchAny(TokenLParen) {
		if group := p.parseGroupExpression(); group != nil {
			return group
		}
		return nil
	}
	if cond := p.parseCondition(); cond != nil {
		return cond
	}
	return nil
}

func (p *Parser) parseGroupExpression() *GroupExpression {
	open := p.expect(TokenLParen)
	p.openParens++
	p.stream.CountAndSkipWhitespaces(ctxPrimary())

	if p.stream.MatchAny(TokenRParen) {
		closing := p.stream.Consume()
		p.openParens--
		p.addError(CodeEmptyExpression, ReasonEmptyGroup, MergePositions(open.Position, closing.Position),
			"Empty group expression")
		p.stream.CountAndSkipWhitespaces(ctxAfterCondition(p.openParens))
		return nil
	}

	inner := p.parseOrExpression()

	if p.stream.MatchAny(TokenRParen) {
		closing := p.stream.Consume()
		p.openParens--
		group := NewGroup(open, inner, closing)
		p.stream.CountAndSkipWhitespaces(ctxAfterCondition(p.openParens))
		return group
	}

	tok := p.stream.Current()
	p.stream.Tag(ctxAfterCondition(p.openParens))
	p.addError(CodeUnbalancedParens, ReasonExpectedClosingParen, tok.Position,
		fmt.Sprintf("Expected ')' to close group opened at %d:%d, found %s",
			open.Position.Line, open.Position.Column, describe(tok)))

	closing := p.skipToClosingParen()
	p.openParens--
	if closing == nil && inner == nil {
		return nil
	}
	group := NewGroup(open, inner, closing)
	if closing != nil {
		p.stream.CountAndSkipWhitespaces(ctxAfterCondition(p.openParens))
	}
	return group
}

// skipToClosingParen discards tokens up to and including the ')' that
// balances the current group. It returns nil if the input runs out first.
func (p *Parser) skipToClosingParen() *Token {
	depth := 0
	for !p.stream.IsAtEnd() {
		tok := p.stream.Consume()
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			if depth == 0 {
				return tok
			}
			depth--
		}
	}
	return nil
}

func (p *Parser) parseCondition() *ConditionExpression {
	tok := p.stream.Current()
	if tok.Kind != TokenIdentifier {
		p.stream.Tag(ctxPrimary())
		p.addError(CodeMissingToken, ReasonExpectedKey, tok.Position,
			fmt.Sprintf("Expected key, found %s", describe(tok)))
		return nil
	}
	if isDigit(tok.Value[0]) {
		p.addError(CodeInvalidIdentifier, ReasonExpectedKey, tok.Position,
			fmt.Sprintf("Key %s must not start with a digit", describe(tok)))
	}
	key := NewKey(p.stream.Consume())
	spacesAfterKey := p.stream.CountAndSkipWhitespaces(ctxAfterKey())

	tok = p.stream.Current()
	if !p.stream.MatchAny(TokenColon, TokenComparator) {
		if tok.Kind == TokenInvalid && isComparatorPrefix(tok.Value) {
			p.stream.Tag(TokenContext{Types: []ContextType{ContextComparator}})
			p.stream.Consume()
		}
		p.addError(CodeMissingToken, ReasonExpectedComparator, tok.Position,
			fmt.Sprintf("Expected ':' or comparator after key '%s', found %s", key.Value, describe(tok)))
		cond := NewCondition(key, nil, nil)
		cond.SpacesAfterKey = spacesAfterKey
		return cond
	}
	cmp := NewComparator(p.stream.Consume())
	spacesAfterComparator := p.stream.CountAndSkipWhitespaces(ctxValue(key.Value))

	tok = p.stream.Current()
	if !p.stream.MatchAny(TokenIdentifier, TokenQuotedString) {
		p.stream.Tag(ctxValue(key.Value))
		p.addError(CodeMissingToken, ReasonExpectedValue, tok.Position,
			fmt.Sprintf("Expected value after '%s%s', found %s", key.Value, cmp.Value, describe(tok)))
		cond := NewCondition(key, cmp, nil)
		cond.SpacesAfterKey = spacesAfterKey
		cond.SpacesAfterComparator = spacesAfterComparator
		return cond
	}
	value := NewValue(p.stream.Consume())
	spacesAfterValue := p.stream.CountAndSkipWhitespaces(ctxAfterCondition(p.openParens))

	cond := NewCondition(key, cmp, value)
	cond.SpacesAfterKey = spacesAfterKey
	cond.SpacesAfterComparator = spacesAfterComparator
	cond.SpacesAfterValue = spacesAfterValue
	return cond
}

// expect guards places where the grammar already checked the token kind.
func (p *Parser) expect(kind TokenKind) *Token {
	tok, err := p.stream.Expect(kind)
	if err != nil {
		panic(bailout{err: ParseError{
			Message:  err.Error(),
			Position: p.stream.Current().Position,
			Code:     CodeSyntaxError,
			Reason:   ReasonInternal,
		}})
	}
	return tok
}

func (p *Parser) addError(code ErrorCode, reason ErrorReason, pos Position, msg string) {
	p.errors = append(p.errors, ParseError{
		Message:     msg,
		Position:    pos,
		Recoverable: true,
		Code:        code,
		Reason:      reason,
	})
	if p.maxErrors > 0 && len(p.errors) >= p.maxErrors {
		panic(bailout{err: ParseError{
			Message:  fmt.Sprintf("Too many errors (%d), parsing aborted", len(p.errors)),
			Position: p.stream.Current().Position,
			Code:     CodeSyntaxError,
			Reason:   ReasonTooManyErrors,
		}})
	}
}

func ctxPrimary() TokenContext {
	return TokenContext{Types: []ContextType{ContextKey, ContextLeftParenthesis}}
}

func ctxAfterKey() TokenContext {
	return TokenContext{Types: []ContextType{ContextComparator, ContextColon}}
}

func ctxValue(key string) TokenContext {
	return TokenContext{Types: []ContextType{ContextValue}, Key: key}
}

func ctxAfterCondition(openParens int) TokenContext {
	if openParens > 0 {
		return TokenContext{Types: []ContextType{ContextLogicalOperator, ContextRightParenthesis}}
	}
	return TokenContext{Types: []ContextType{ContextLogicalOperator}}
}

// isOperatorPrefix reports whether s could be the start of AND or OR.
func isOperatorPrefix(s string) bool {
	if s == "" {
		return false
	}
	upper := strings.ToUpper(s)
	return strings.HasPrefix("AND", upper) || strings.HasPrefix("OR", upper)
}

func isComparatorPrefix(s string) bool {
	if s == "" {
		return false
	}
	for _, cmp := range Comparators {
		if strings.HasPrefix(cmp, s) {
			return true
		}
	}
	return false
}
