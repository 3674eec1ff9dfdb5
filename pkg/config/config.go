// Package config loads the kotoba settings document and resolves
// environment placeholders before anything else sees the values.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// placeholderPattern matches ${VAR} and ${VAR:default}.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// Config is an immutable snapshot of the settings document. Every string
// value has already been passed through environment expansion.
type Config struct {
	values map[string]any
}

// Load reads and parses the YAML settings file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML bytes.
func Parse(data []byte) (*Config, error) {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if values == nil {
		values = make(map[string]any)
	}

	expanded, ok := expandValue(values).(map[string]any)
	if !ok {
		expanded = values
	}

	return &Config{values: expanded}, nil
}

// New wraps an already-built settings map, expanding placeholders. Used by
// tests and by callers that assemble settings programmatically.
func New(values map[string]any) *Config {
	if values == nil {
		values = make(map[string]any)
	}

	expanded, ok := expandValue(values).(map[string]any)
	if !ok {
		expanded = values
	}

	return &Config{values: expanded}
}

// expandValue walks maps and lists, expanding placeholders in every string.
func expandValue(value any) any {
	switch v := value.(type) {
	case string:
		return expandString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = expandValue(item)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = expandValue(item)
		}

		return out
	default:
		return value
	}
}

func expandString(input string) string {
	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		name := groups[1]
		fallback := groups[2]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}

		return fallback
	})
}

// Get resolves a dotted path ("providers.data.vocab.type") against the
// settings tree. The second return reports whether the path exists.
func (c *Config) Get(path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := any(c.values)

	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// GetString returns the string at path, or fallback when the path is
// missing or holds a non-string.
func (c *Config) GetString(path, fallback string) string {
	value, ok := c.Get(path)
	if !ok {
		return fallback
	}

	s, ok := value.(string)
	if !ok {
		return fallback
	}

	return s
}

// GetBool returns the boolean at path, or fallback when missing.
func (c *Config) GetBool(path string, fallback bool) bool {
	value, ok := c.Get(path)
	if !ok {
		return fallback
	}

	b, ok := value.(bool)
	if !ok {
		return fallback
	}

	return b
}

// GetStringSlice returns the list of strings at path. Non-string elements
// are skipped.
func (c *Config) GetStringSlice(path string) []string {
	value, ok := c.Get(path)
	if !ok {
		return nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

// Section returns the named top-level category as a map. Missing or
// non-map sections come back as an empty map.
func (c *Config) Section(name string) map[string]any {
	value, ok := c.values[name]
	if !ok {
		return map[string]any{}
	}

	section, ok := value.(map[string]any)
	if !ok {
		return map[string]any{}
	}

	return section
}
