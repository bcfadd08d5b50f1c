package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/query/parser"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) EncodeTokens(tokens []parser.Token) error {
	if tokens == nil {
		tokens = []parser.Token{}
	}
	return e.encode(tokens)
}

func (e *JSONEncoder) EncodeResult(result parser.ParseResult) error {
	return e.encode(result)
}

func (e *JSONEncoder) EncodeContext(ctx complete.Context) error {
	return e.encode(ctx)
}

func (e *JSONEncoder) EncodeItems(items []complete.Item) error {
	if items == nil {
		items = []complete.Item{}
	}
	return e.encode(items)
}

func (e *JSONEncoder) encode(v any) error {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}
