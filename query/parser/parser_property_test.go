package parser

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

const queryPattern = `k[a-z]{0,4}(:| == | >= |<)v[a-z0-9]{0,4}( (AND|OR) k[a-z]{0,3}: ?v[a-z]{0,3}){0,3}`

func TestTokenizeCoversInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input").(string)
		tokens := Tokenize(input)

		eofs := 0
		offset := 0
		for _, tok := range tokens {
			if tok.Kind == TokenEOF {
				eofs++
				continue
			}
			if tok.Position.Start != offset {
				t.Fatalf("token %s starts at %d, want %d", tok.Kind, tok.Position.Start, offset)
			}
			if tok.Position.End <= tok.Position.Start {
				t.Fatalf("token %s is empty at %d", tok.Kind, tok.Position.Start)
			}
			offset = tok.Position.End
		}
		if offset != len(input) {
			t.Fatalf("tokens cover %d bytes, want %d", offset, len(input))
		}
		if eofs != 1 || tokens[len(tokens)-1].Kind != TokenEOF {
			t.Fatalf("got %d EOF tokens, want exactly one at the end", eofs)
		}
	})
}

func TestParseNeverPanicsAndIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input").(string)
		first := Parse(input)
		second := Parse(input)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Parse(%q) is not deterministic", input)
		}
		if len(first.Tokens) == 0 {
			t.Fatalf("Parse(%q) returned no tokens", input)
		}
		if first.Success && len(first.Errors) != 0 {
			t.Fatalf("Parse(%q) succeeded with %d errors", input, len(first.Errors))
		}
	})
}

func TestParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.StringMatching(queryPattern).Draw(t, "query").(string)
		result := Parse(input)
		if !result.Success {
			t.Fatalf("Parse(%q) failed: %v", input, result.Errors)
		}
		if got := result.AST.String(); got != input {
			t.Fatalf("String() = %q, want %q", got, input)
		}
		if result.AST.Position.End != len(input) {
			t.Fatalf("AST ends at %d, want %d", result.AST.Position.End, len(input))
		}

		pretty := Pretty(result.AST)
		again := Parse(pretty)
		if !again.Success {
			t.Fatalf("Parse(Pretty(%q)) = %q failed: %v", input, pretty, again.Errors)
		}
		if got := Pretty(again.AST); got != pretty {
			t.Fatalf("Pretty is not stable: %q then %q", pretty, got)
		}
	})
}
