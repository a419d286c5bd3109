// Package tag resolves tagged environment variable values into structured
// data.
//
// A tagged value starts with a registered prefix such as "json:" or
// "vault:". The [Resolver] classifies each value against a [Registry],
// resolves per-tag configuration from the environment and from an inline
// "config=" segment, runs the matching [ParseFunc], and optionally resolves
// tags nested inside the result.
package tag

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"slices"
	"strings"
)

// ParseFunc turns the payload of a tagged value into a structured value.
type ParseFunc func(ctx context.Context, req Request) (any, error)

// Request is the input of a [ParseFunc].
type Request struct {
	// Config is the validated tag configuration. It is empty, never nil, for
	// tags without a schema.
	Config Config
	// Value is the payload with the prefix and any inline config removed.
	Value string
	// Env is the environment snapshot the resolver was built with.
	Env Env
}

// Kind describes one tag.
type Kind struct {
	// Name is the tag name without the trailing colon.
	Name string
	// Parse produces the tag's value.
	Parse ParseFunc
	// Schema is a JSON Schema (draft 4) for the tag's configuration. Tags
	// with an empty schema accept no configuration.
	Schema string
	// Nestable marks tags whose string leaves are resolved again when nested
	// resolution is enabled.
	Nestable bool
}

// Prefix returns the literal prefix that marks a value as this tag.
func (k Kind) Prefix() string { return k.Name + ":" }

// Configurable reports whether the tag accepts configuration.
func (k Kind) Configurable() bool { return k.Schema != "" }

// ConfigVar returns the name of the environment variable holding the tag's
// default configuration.
func (k Kind) ConfigVar() string { return strings.ToUpper(k.Name) + "_CONFIG" }

// TokenVar returns the name of the environment variable holding the tag's
// default token.
func (k Kind) TokenVar() string { return strings.ToUpper(k.Name) + "_TOKEN" }

// Config is a tag configuration decoded from JSON.
type Config map[string]any

// Bool returns the boolean at key, or false.
func (c Config) Bool(key string) bool {
	b, _ := c[key].(bool)

	return b
}

// String returns the string at key, or "".
func (c Config) String(key string) string {
	s, _ := c[key].(string)

	return s
}

// Int returns the number at key truncated to an int, or 0.
func (c Config) Int(key string) int {
	switch n := c[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}

		f, _ := n.Float64()

		return int(f)
	default:
		return 0
	}
}

// Strings returns the string elements of the list at key.
func (c Config) Strings(key string) []string {
	switch l := c[key].(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))

		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}

// Env is a snapshot of environment variables.
type Env map[string]string

// ProcessEnv returns a snapshot of the process environment.
func ProcessEnv() Env {
	env := make(Env)

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env
}

// Lookup returns the value of name and whether it is set.
func (e Env) Lookup(name string) (string, bool) {
	v, ok := e[name]

	return v, ok
}

// Names returns the variable names in sorted order.
func (e Env) Names() []string {
	return slices.Sorted(maps.Keys(e))
}

// Context maps variable names to resolved values.
type Context map[string]any

// Names returns the context keys in sorted order.
func (c Context) Names() []string {
	return slices.Sorted(maps.Keys(c))
}
