package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/pkg"
)

func TestDetect_DefaultWithoutAutodetect(t *testing.T) {
	d := Config{}.Detect("<= FOO =>")

	assert.Equal(t, "{{", d.VariableStart)
	assert.Equal(t, "}}", d.VariableEnd)
	assert.Equal(t, "{%", d.BlockStart)
	assert.Equal(t, "{", d.ConfigStart)
}

func TestDetect_ConfiguredSet(t *testing.T) {
	d := Config{Set: "[="}.Detect("{{ FOO }}")

	assert.Equal(t, "[=", d.VariableStart)
	assert.Equal(t, "[%", d.BlockStart)
	assert.Equal(t, "]", d.ConfigEnd)
}

func TestDetect_Autodetect(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantVar  string
		wantConf string
	}{
		{"default braces", "The value of FOO={{ FOO }}", "{{", "{"},
		{"angle equals", "The value of FOO=<= FOO =>", "<=", "<"},
		{"square equals", "[= FOO =]", "[=", "["},
		{"paren equals", "(= FOO =)", "(=", "("},
		{"brace equals", "{= FOO =}", "{=", "<"},
		{"no markers keeps configured", "plain text", "{{", "{"},
		{"inline config square", `config=["k", "v"]`, "[=", "["},
		{"inline config paren", `config=("k": "v")`, "(=", "("},
		{"inline config braces", `config={"flatten": true}`, "{{", "{"},
		// "{=" and "<=" share the "<" config marker; the later set wins
		{"inline config angle last match", `config=<"key": "value">`, "<=", "<"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Config{Autodetect: true}.Detect(tt.content)

			assert.Equal(t, tt.wantVar, d.VariableStart)
			assert.Equal(t, tt.wantConf, d.ConfigStart)
		})
	}
}

func TestDetect_InlineConfigIgnoresVariableMarkers(t *testing.T) {
	// the variable markers of "[=" appear, but the config signature decides
	d := Config{Autodetect: true}.Detect(`[= X =] config=("a": 1)`)

	assert.Equal(t, "(=", d.VariableStart)
}

func TestDetect_LastMatchWins(t *testing.T) {
	d := Config{Autodetect: true}.Detect("{{ A }} and (= B =)")

	assert.Equal(t, "(=", d.VariableStart)
}

func TestDetect_OverridesApplyAfterSelection(t *testing.T) {
	cfg := Config{
		Autodetect: true,
		Override:   Delims{VariableStart: "@@", ConfigEnd: "|"},
	}

	d := cfg.Detect("[= FOO =]")

	assert.Equal(t, "@@", d.VariableStart)
	assert.Equal(t, "=]", d.VariableEnd)
	assert.Equal(t, "[", d.ConfigStart)
	assert.Equal(t, "|", d.ConfigEnd)
}

func TestLookupAndNames(t *testing.T) {
	assert.Equal(t, []string{"{{", "{=", "<=", "[=", "(="}, Names())

	s, ok := Lookup("<=")
	require.True(t, ok)
	assert.Equal(t, "=>", s.VariableEnd)

	_, ok = Lookup("<<")
	assert.False(t, ok)

	n := 0
	for range Sets() {
		n++
	}

	assert.Equal(t, 5, n)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, Config{}.Validate())
	require.NoError(t, Config{Set: "(="}.Validate())

	err := Config{Set: "=="}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrUnknownMarkerSet)
	assert.Contains(t, err.Error(), `"=="`)
}
