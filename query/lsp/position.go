package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/filterq/query/parser"
)

// A document holds one query per line. Editors address text in UTF-16 code
// units while the parser works on byte offsets into a single line, so
// everything crossing that boundary goes through the helpers below.

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// lineAt returns line n of text, or "" when the document is shorter.
func lineAt(text string, n protocol.UInteger) string {
	lines := splitLines(text)
	if int(n) >= len(lines) {
		return ""
	}
	return lines[n]
}

// byteOffset converts a UTF-16 column into a byte offset into line. Columns
// past the end clamp to len(line); a column inside a surrogate pair stops
// before the rune.
func byteOffset(line string, character protocol.UInteger) int {
	units := 0
	for i, r := range line {
		if units >= int(character) {
			return i
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > int(character) {
			return i
		}
		units += n
	}
	return len(line)
}

// character converts a byte offset into line into a UTF-16 column.
func character(line string, offset int) protocol.UInteger {
	if offset > len(line) {
		offset = len(line)
	}
	units := 0
	for i := 0; i < offset; {
		r, w := utf8.DecodeRuneInString(line[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
		i += w
	}
	return protocol.UInteger(units)
}

// lineRange maps a byte span of the query on line n to an editor range.
func lineRange(line string, n protocol.UInteger, pos parser.Position) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: n, Character: character(line, pos.Start)},
		End:   protocol.Position{Line: n, Character: character(line, pos.End)},
	}
}

// applyChange applies one content change to text. Whole-document changes
// replace it; ranged changes are spliced in.
func applyChange(text string, change any) string {
	switch change := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return change.Text
	case protocol.TextDocumentContentChangeEvent:
		if change.Range == nil {
			return change.Text
		}
		start, end := change.Range.IndexesIn(text)
		if end < start {
			start, end = end, start
		}
		return text[:start] + change.Text + text[end:]
	}
	return text
}
