// Package catalog loads completion catalogs (the keys and values a query
// can use) from YAML, TOML or JSON files and watches them for changes.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"github.com/dhamidi/filterq/query/complete"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatJSON
)

var formatNames = map[Format]string{
	FormatYAML: "yaml",
	FormatTOML: "toml",
	FormatJSON: "json",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// DecodeError reports a catalog that could not be decoded. Line and Column
// are set when the decoder reports them.
type DecodeError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse catalog %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse catalog %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type rawCatalog struct {
	CaseSensitive   *bool    `json:"caseSensitive" yaml:"caseSensitive" toml:"caseSensitive"`
	FuzzyMatch      *bool    `json:"fuzzyMatch" yaml:"fuzzyMatch" toml:"fuzzyMatch"`
	MaxSuggestions  *int     `json:"maxSuggestions" yaml:"maxSuggestions" toml:"maxSuggestions"`
	SuggestGrouping *bool    `json:"suggestGrouping" yaml:"suggestGrouping" toml:"suggestGrouping"`
	Keys            []rawKey `json:"keys" yaml:"keys" toml:"keys"`
}

// rawKey accepts values either as plain strings or as tables with a value
// and a description.
type rawKey struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description" yaml:"description" toml:"description"`
	ValueType   string `json:"valueType" yaml:"valueType" toml:"valueType"`
	Values      []any  `json:"values" yaml:"values" toml:"values"`
}

// Load reads the catalog at path. The format follows the extension.
func Load(path string) (complete.Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return complete.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return complete.Config{}, fmt.Errorf("read catalog: %w", err)
	}
	cfg, err := decode(data, format)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Path = path
		}
		return complete.Config{}, err
	}
	return cfg, nil
}

// Decode reads a catalog in the given format from r. Settings missing from
// the catalog keep their defaults.
func Decode(r io.Reader, format Format) (complete.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return complete.Config{}, fmt.Errorf("read catalog: %w", err)
	}
	return decode(data, format)
}

func decode(data []byte, format Format) (complete.Config, error) {
	var raw rawCatalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return complete.Config{}, &DecodeError{Path: "<input>", Err: err}
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			derr := &DecodeError{Path: "<input>", Err: err}
			var tomlErr *toml.DecodeError
			if errors.As(err, &tomlErr) {
				derr.Line, derr.Column = tomlErr.Position()
			}
			return complete.Config{}, derr
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return complete.Config{}, &DecodeError{Path: "<input>", Err: err}
		}
	default:
		return complete.Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return raw.config()
}

func (raw rawCatalog) config() (complete.Config, error) {
	cfg := complete.DefaultConfig()
	if raw.CaseSensitive != nil {
		cfg.CaseSensitive = *raw.CaseSensitive
	}
	if raw.FuzzyMatch != nil {
		cfg.FuzzyMatch = *raw.FuzzyMatch
	}
	if raw.MaxSuggestions != nil {
		if *raw.MaxSuggestions < 0 {
			return cfg, fmt.Errorf("maxSuggestions must not be negative, got %d", *raw.MaxSuggestions)
		}
		cfg.MaxSuggestions = *raw.MaxSuggestions
	}
	if raw.SuggestGrouping != nil {
		cfg.SuggestGrouping = *raw.SuggestGrouping
	}

	seen := make(map[string]bool)
	for i, k := range raw.Keys {
		if k.Name == "" {
			return cfg, fmt.Errorf("keys[%d]: missing name", i)
		}
		if seen[k.Name] {
			return cfg, fmt.Errorf("keys[%d]: duplicate key %q", i, k.Name)
		}
		seen[k.Name] = true

		key := complete.KeyConfig{
			Name:        k.Name,
			Description: k.Description,
			ValueType:   k.ValueType,
		}
		for j, v := range k.Values {
			value, err := normalizeValue(v)
			if err != nil {
				return cfg, fmt.Errorf("keys[%d] %s: values[%d]: %w", i, k.Name, j, err)
			}
			key.Values = append(key.Values, value)
		}
		cfg.Keys = append(cfg.Keys, key)
	}
	return cfg, nil
}

// normalizeValue turns the shapes the decoders produce into a ValueConfig.
func normalizeValue(v any) (complete.ValueConfig, error) {
	switch v := v.(type) {
	case string:
		return complete.ValueConfig{Value: v}, nil
	case map[string]any:
		return valueFromTable(func(k string) (any, bool) {
			x, ok := v[k]
			return x, ok
		})
	case map[any]any:
		return valueFromTable(func(k string) (any, bool) {
			x, ok := v[k]
			return x, ok
		})
	case bool, int, int64, uint64, float64:
		return complete.ValueConfig{Value: fmt.Sprint(v)}, nil
	case nil:
		return complete.ValueConfig{}, errors.New("empty value")
	}
	return complete.ValueConfig{}, fmt.Errorf("unsupported value of type %T", v)
}

func valueFromTable(get func(string) (any, bool)) (complete.ValueConfig, error) {
	raw, ok := get("value")
	if !ok {
		return complete.ValueConfig{}, errors.New("missing value")
	}
	value, err := normalizeValue(raw)
	if err != nil {
		return value, err
	}
	if desc, ok := get("description"); ok {
		s, ok := desc.(string)
		if !ok {
			return value, fmt.Errorf("description must be a string, got %T", desc)
		}
		value.Description = s
	}
	return value, nil
}
