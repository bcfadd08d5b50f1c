package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/filterq/query/parser"
)

func TestByteOffset(t *testing.T) {
	line := "a😀b:é"
	tests := []struct {
		character protocol.UInteger
		want      int
	}{
		{0, 0},
		{1, 1},
		{2, 1}, // inside the surrogate pair
		{3, 5},
		{4, 6},
		{5, 7},
		{6, 9},
		{99, 9},
	}

	for _, tt := range tests {
		if got := byteOffset(line, tt.character); got != tt.want {
			t.Errorf("byteOffset(%q, %d) = %d, want %d", line, tt.character, got, tt.want)
		}
	}
}

func TestCharacter(t *testing.T) {
	line := "a😀b:é"
	tests := []struct {
		offset int
		want   protocol.UInteger
	}{
		{0, 0},
		{1, 1},
		{5, 3},
		{7, 5},
		{9, 6},
		{42, 6},
	}

	for _, tt := range tests {
		if got := character(line, tt.offset); got != tt.want {
			t.Errorf("character(%q, %d) = %d, want %d", line, tt.offset, got, tt.want)
		}
	}
}

func TestLineRange(t *testing.T) {
	got := lineRange("é: x", 3, parser.Position{Start: 4, End: 5})
	want := protocol.Range{
		Start: protocol.Position{Line: 3, Character: 3},
		End:   protocol.Position{Line: 3, Character: 4},
	}
	if got != want {
		t.Errorf("lineRange = %+v, want %+v", got, want)
	}
}

func TestLineAt(t *testing.T) {
	text := "a:b\r\nc:d\n"
	if got := lineAt(text, 0); got != "a:b" {
		t.Errorf("lineAt(0) = %q, want %q", got, "a:b")
	}
	if got := lineAt(text, 1); got != "c:d" {
		t.Errorf("lineAt(1) = %q, want %q", got, "c:d")
	}
	if got := lineAt(text, 7); got != "" {
		t.Errorf("lineAt(7) = %q, want empty", got)
	}
}

func TestApplyChange(t *testing.T) {
	text := "status: active\nrole: admin"

	whole := applyChange(text, protocol.TextDocumentContentChangeEventWhole{Text: "age > 1"})
	if whole != "age > 1" {
		t.Errorf("whole change = %q", whole)
	}

	ranged := applyChange(text, protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 1, Character: 6},
			End:   protocol.Position{Line: 1, Character: 11},
		},
		Text: "guest",
	})
	if ranged != "status: active\nrole: guest" {
		t.Errorf("ranged change = %q", ranged)
	}
}
