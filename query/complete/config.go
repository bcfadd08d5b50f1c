package complete

import "github.com/dhamidi/filterq/query/parser"

const DefaultMaxSuggestions = 50

// ValueConfig is one known value of a key.
type ValueConfig struct {
	Value       string `json:"value" yaml:"value" toml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// KeyConfig describes a key the user can filter on. ValueType is free-form
// and only shown to the user.
type KeyConfig struct {
	Name        string        `json:"name" yaml:"name" toml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Values      []ValueConfig `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty"`
	ValueType   string        `json:"valueType,omitempty" yaml:"valueType,omitempty" toml:"valueType,omitempty"`
}

type Config struct {
	Keys           []KeyConfig `json:"keys"`
	CaseSensitive  bool        `json:"caseSensitive"`
	FuzzyMatch     bool        `json:"fuzzyMatch"`
	MaxSuggestions int         `json:"maxSuggestions"`
	// SuggestGrouping enables "(" and ")" items.
	SuggestGrouping bool `json:"suggestGrouping"`

	parserOpts []parser.Option
}

func DefaultConfig() Config {
	return Config{
		FuzzyMatch:     true,
		MaxSuggestions: DefaultMaxSuggestions,
	}
}

// Key returns the configuration for name.
func (c Config) Key(name string) (KeyConfig, bool) {
	for _, k := range c.Keys {
		if k.Name == name {
			return k, true
		}
	}
	return KeyConfig{}, false
}

// clone deep-copies c so an engine never shares slices with its caller.
func (c Config) clone() Config {
	out := c
	out.Keys = make([]KeyConfig, len(c.Keys))
	for i, k := range c.Keys {
		k.Values = append([]ValueConfig(nil), k.Values...)
		out.Keys[i] = k
	}
	out.parserOpts = append([]parser.Option(nil), c.parserOpts...)
	return out
}

type Option func(*Config)

func WithKeys(keys ...KeyConfig) Option {
	return func(c *Config) {
		c.Keys = keys
	}
}

func WithCaseSensitive(on bool) Option {
	return func(c *Config) {
		c.CaseSensitive = on
	}
}

func WithFuzzyMatch(on bool) Option {
	return func(c *Config) {
		c.FuzzyMatch = on
	}
}

// WithMaxSuggestions caps each suggestion list; 0 means unlimited.
func WithMaxSuggestions(n int) Option {
	return func(c *Config) {
		c.MaxSuggestions = n
	}
}

func WithSuggestGrouping(on bool) Option {
	return func(c *Config) {
		c.SuggestGrouping = on
	}
}

// WithParserOptions passes options to every parse the engine runs.
func WithParserOptions(opts ...parser.Option) Option {
	return func(c *Config) {
		c.parserOpts = append(c.parserOpts, opts...)
	}
}

// WithConfig replaces the whole configuration, keeping parser options
// already set.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		opts := c.parserOpts
		*c = cfg
		c.parserOpts = append(opts, cfg.parserOpts...)
	}
}
