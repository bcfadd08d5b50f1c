// Package parser provides an error-tolerant parser for filter queries of the
// form key:value combined with AND, OR and parentheses.
//
// # Overview
//
//	status: active AND (role: admin OR role: "super user")
//
// Parsing runs on every keystroke of an editor, so the input is usually
// incomplete. Parse never fails outright: it returns the best AST it could
// build, the errors it collected, and the full token list.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│ TokenStream │
//	│  (string)   │     │  (tokens)   │     │  (cursor)   │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                                               │
//	                                               ▼
//	                                        ┌─────────────┐
//	                                        │   Parser    │
//	                                        │    (AST)    │
//	                                        └─────────────┘
//
// # Grammar
//
//	Query     := OrExpr
//	OrExpr    := AndExpr (OR AndExpr)*
//	AndExpr   := Primary (AND Primary)*
//	Primary   := Group | Condition
//	Group     := '(' OrExpr ')'
//	Condition := Key (':' | Comparator) Value
//	Key       := Identifier not starting with a digit
//	Value     := Identifier | QuotedString
//
// AND binds tighter than OR and both are left-associative.
//
// # Context Tagging
//
// Whenever the parser skips whitespace it records on the skipped tokens
// which constructs would be valid there (a key, a value for a given key, a
// comparator, a logical operator, a parenthesis). Completion reads these
// tags back instead of analysing the tree a second time:
//
//	status: act
//	      ^ ^
//	      │ └─ being typed: value for "status"
//	      └─── whitespace tagged {value, key=status}
//
// When there is no whitespace at a decision point, the token right after
// it is tagged instead.
package parser
