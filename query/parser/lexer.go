package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type LexerOption func(*Lexer)

// WithCaseSensitiveOperators makes only upper-case AND and OR logical
// operators; "and" and "or" lex as identifiers.
func WithCaseSensitiveOperators() LexerOption {
	return func(l *Lexer) {
		l.caseSensitiveOperators = true
	}
}

type Lexer struct {
	input                  string
	pos                    int
	line                   int
	column                 int
	caseSensitiveOperators bool
}

func NewLexer(input string, opts ...LexerOption) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans input into tokens. The result always ends with exactly
// one EOF token positioned at len(input).
func Tokenize(input string, opts ...LexerOption) []Token {
	l := NewLexer(input, opts...)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) peekRune() (rune, int) {
	if l.pos >= len(l.input) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

// advance moves past one rune and keeps line and column current.
func (l *Lexer) advance() rune {
	r, size := l.peekRune()
	if size == 0 {
		return 0
	}
	l.pos += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) start() Position {
	return Position{Start: l.pos, End: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) NextToken() Token {
	start := l.start()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Position: start}
	}

	r, _ := l.peekRune()

	if unicode.IsSpace(r) {
		return l.scanWhitespace(start)
	}

	if isIdentChar(l.peek()) {
		return l.scanIdentifier(start)
	}

	switch r {
	case '"', '\'':
		return l.scanQuotedString(start)
	case ':':
		l.advance()
		return l.token(TokenColon, start)
	case '(':
		l.advance()
		return l.token(TokenLParen, start)
	case ')':
		l.advance()
		return l.token(TokenRParen, start)
	case '<', '>', '!', '=':
		return l.scanComparator(start)
	}

	l.advance()
	return l.token(TokenInvalid, start)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		r, size := l.peekRune()
		if size == 0 || !unicode.IsSpace(r) {
			break
		}
		l.advance()
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanIdentifier(start Position) Token {
	for isIdentChar(l.peek()) {
		l.advance()
	}
	tok := l.token(TokenIdentifier, start)

	word := tok.Value
	if !l.caseSensitiveOperators {
		word = strings.ToUpper(word)
	}
	if kind := LookupOperator(word); kind != TokenIdentifier {
		tok.Kind = kind
		tok.Value = word
	}
	return tok
}

func (l *Lexer) scanQuotedString(start Position) Token {
	quote := l.peek()
	l.advance()

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return l.token(TokenInvalid, start)
		}
		ch := l.peek()
		if ch == quote {
			l.advance()
			break
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.advance()
			r := l.advance()
			switch r {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '"', '\'':
				sb.WriteRune(r)
			default:
				sb.WriteByte('\\')
				sb.WriteRune(r)
			}
			continue
		}
		sb.WriteRune(l.advance())
	}

	tok := l.token(TokenQuotedString, start)
	tok.Value = sb.String()
	tok.Quote = quote
	return tok
}

func (l *Lexer) scanComparator(start Position) Token {
	ch := l.peek()
	if l.peekN(1) == '=' {
		l.advanceN(2)
		return l.token(TokenComparator, start)
	}
	l.advance()
	if ch == '<' || ch == '>' {
		return l.token(TokenComparator, start)
	}
	return l.token(TokenInvalid, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	pos := start
	pos.End = l.pos
	return Token{
		Kind:     kind,
		Value:    l.input[pos.Start:pos.End],
		Position: pos,
	}
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
