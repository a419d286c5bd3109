package tag

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/pkg"
)

func TestDefault_Order(t *testing.T) {
	assert.Equal(t, []string{
		"json", "jsonfile", "base64", "consul", "list",
		"file", "vault", "dns", "escape", "expr",
	}, Default().Names())
}

func TestDefault_Capabilities(t *testing.T) {
	var configurable, nestable []string

	for k := range Default().Kinds() {
		if k.Configurable() {
			configurable = append(configurable, k.Name)
		}

		if k.Nestable {
			nestable = append(nestable, k.Name)
		}
	}

	assert.Equal(t, []string{"json", "jsonfile", "consul", "vault", "dns"}, configurable)
	assert.Equal(t, []string{"json", "jsonfile", "list"}, nestable)
}

func TestRegistry_Classify(t *testing.T) {
	r := Default()

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			k, ok := r.Classify(name + ":anything")
			require.True(t, ok)
			assert.Equal(t, name, k.Name)
		})
	}

	tests := []string{
		"plain",
		"json",
		"jsonx:{}",
		"unknown:value",
		"http://example.com",
		" json:{}",
	}

	for _, v := range tests {
		_, ok := r.Classify(v)
		assert.False(t, ok, v)
	}

	// "jsonfile:" must not be taken for "json:"
	k, ok := r.Classify("jsonfile:/tmp/x.json")
	require.True(t, ok)
	assert.Equal(t, "jsonfile", k.Name)
}

func TestRegistry_Lookup(t *testing.T) {
	k, ok := Default().Lookup("vault:")
	require.True(t, ok)
	assert.Equal(t, "vault:", k.Prefix())
	assert.Equal(t, "VAULT_CONFIG", k.ConfigVar())
	assert.Equal(t, "VAULT_TOKEN", k.TokenVar())

	_, ok = Default().Lookup("nope")
	assert.False(t, ok)
}

func TestRegistry_Register_Errors(t *testing.T) {
	noop := func(context.Context, Request) (any, error) { return nil, nil }

	tests := []struct {
		name string
		kind Kind
	}{
		{"empty name", Kind{Parse: noop}},
		{"colon in name", Kind{Name: "a:b", Parse: noop}},
		{"no parser", Kind{Name: "x"}},
		{"bad schema", Kind{Name: "x", Parse: noop, Schema: `{"type": 5}`}},
		{"schema not json", Kind{Name: "x", Parse: noop, Schema: `{`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.kind)
			assert.ErrorIs(t, err, pkg.ErrRegister)
		})
	}

	r, err := NewRegistry(Kind{Name: "x", Parse: noop})
	require.NoError(t, err)
	assert.ErrorIs(t, r.Register(Kind{Name: "x", Parse: noop}), pkg.ErrRegister)
}

func TestRegistry_Kinds_StopsEarly(t *testing.T) {
	var seen []string

	for k := range Default().Kinds() {
		seen = append(seen, k.Name)
		if len(seen) == 3 {
			break
		}
	}

	assert.Equal(t, []string{"json", "jsonfile", "base64"}, seen)
	assert.True(t, slices.Equal(Default().Names()[:3], seen))
}
