// Package format renders tokens, parse results, cursor contexts and
// completion items for the command line.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
)

type Encoder interface {
	EncodeTokens(tokens []parser.Token) error
	EncodeResult(result parser.ParseResult) error
	EncodeContext(ctx complete.Context) error
	EncodeItems(items []complete.Item) error
}

// Names lists the formats New accepts.
var Names = []string{"text", "json", "line"}

// New returns the encoder called name writing to w.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "text":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Names)
}
