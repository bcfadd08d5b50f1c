package parser

import "fmt"

// ErrorCode is the stable classification of a parse error.
type ErrorCode int

const (
	CodeSyntaxError ErrorCode = iota
	CodeUnexpectedToken
	CodeMissingToken
	CodeInvalidIdentifier
	CodeUnbalancedParens
	CodeEmptyExpression
)

var errorCodeNames = map[ErrorCode]string{
	CodeSyntaxError:       "SYNTAX_ERROR",
	CodeUnexpectedToken:   "UNEXPECTED_TOKEN",
	CodeMissingToken:      "MISSING_TOKEN",
	CodeInvalidIdentifier: "INVALID_IDENTIFIER",
	CodeUnbalancedParens:  "UNBALANCED_PARENS",
	CodeEmptyExpression:   "EMPTY_EXPRESSION",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ErrorReason refines an ErrorCode with what the parser was looking for.
type ErrorReason int

const (
	ReasonNone ErrorReason = iota
	ReasonEmptyQuery
	ReasonExpectedKey
	ReasonExpectedComparator
	ReasonExpectedValue
	ReasonExpectedOperator
	ReasonExpectedClosingParen
	ReasonUnexpectedClosingParen
	ReasonEmptyGroup
	ReasonTooManyErrors
	ReasonInternal
)

var errorReasonNames = map[ErrorReason]string{
	ReasonNone:                   "",
	ReasonEmptyQuery:             "EMPTY_QUERY",
	ReasonExpectedKey:            "EXPECTED_KEY",
	ReasonExpectedComparator:     "EXPECTED_COMPARATOR",
	ReasonExpectedValue:          "EXPECTED_VALUE",
	ReasonExpectedOperator:       "EXPECTED_OPERATOR",
	ReasonExpectedClosingParen:   "EXPECTED_CLOSING_PAREN",
	ReasonUnexpectedClosingParen: "UNEXPECTED_CLOSING_PAREN",
	ReasonEmptyGroup:             "EMPTY_GROUP",
	ReasonTooManyErrors:          "TOO_MANY_ERRORS",
	ReasonInternal:               "INTERNAL",
}

func (r ErrorReason) String() string {
	if name, ok := errorReasonNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

type ParseError struct {
	Message     string
	Position    Position
	Recoverable bool
	Code        ErrorCode
	Reason      ErrorReason
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
}

// describe renders a token for use in an error message.
func describe(tok *Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenQuotedString:
		return fmt.Sprintf("%c%s%c", tok.Quote, tok.Value, tok.Quote)
	}
	return fmt.Sprintf("'%s'", tok.Value)
}
