package tag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/pkg"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  any
	}{
		{"object", `{"a": 1}`, map[string]any{"a": int64(1)}},
		{"float", `{"pi": 3.14}`, map[string]any{"pi": 3.14}},
		{"list", `["x", true, null]`, []any{"x", true, nil}},
		{"hashrocket", `{"key" => "value"}`, map[string]any{"key": "value"}},
		{"hashrocket nested", `{"a"=>{"b" => ["c"]}}`, map[string]any{
			"a": map[string]any{"b": []any{"c"}},
		}},
		{"arrow inside string kept", `{"a": "x => y"}`, map[string]any{"a": "x => y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON(t.Context(), Request{Value: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "{", `{"a": 1} trailing`, "not json"} {
		_, err := ParseJSON(t.Context(), Request{Value: bad})
		assert.ErrorIs(t, err, pkg.ErrInvalidJSON, bad)
	}
}

func TestParseJSONFile(t *testing.T) {
	path := writeFile(t, "data.json", `{
	// comment
	"name": "app",
	"ports": [80, 443,],
}`)

	got, err := ParseJSONFile(t.Context(), Request{Value: path})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "app",
		"ports": []any{int64(80), int64(443)},
	}, got)

	_, err = ParseJSONFile(t.Context(), Request{Value: filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorIs(t, err, pkg.ErrReadFile)
	assert.Contains(t, err.Error(), "IOError raised while reading file")

	bad := writeFile(t, "bad.json", `{"a": `)
	_, err = ParseJSONFile(t.Context(), Request{Value: bad})
	assert.ErrorIs(t, err, pkg.ErrInvalidJSON)
}

func TestParseBase64(t *testing.T) {
	got, err := ParseBase64(t.Context(), Request{Value: "Zm9vYmFy"})
	require.NoError(t, err)
	assert.Equal(t, "foobar", got)

	_, err = ParseBase64(t.Context(), Request{Value: "not base64!"})
	assert.ErrorIs(t, err, pkg.ErrInvalidBase64)
}

func TestParseList(t *testing.T) {
	got, err := ParseList(t.Context(), Request{Value: "foo, bar ,baz"})
	require.NoError(t, err)
	assert.Equal(t, []any{"foo", "bar", "baz"}, got)

	got, err = ParseList(t.Context(), Request{Value: ""})
	require.NoError(t, err)
	assert.Equal(t, []any{""}, got)
}

func TestParseFile(t *testing.T) {
	path := writeFile(t, "plain.txt", "line one\nline two\n")

	got, err := ParseFile(t.Context(), Request{Value: path})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got)

	_, err = ParseFile(t.Context(), Request{Value: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, pkg.ErrReadFile)
}

func TestParseEscape(t *testing.T) {
	got, err := ParseEscape(t.Context(), Request{Value: "file:foobar"})
	require.NoError(t, err)
	assert.Equal(t, "file:foobar", got)
}

func TestParseExpr(t *testing.T) {
	env := Env{"HOME": "/home/user", "N": "abc"}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"arithmetic", "1 + 2", int64(3)},
		{"env function", `env("HOME") + "/bin"`, "/home/user/bin"},
		{"missing env", `env("NOPE")`, ""},
		{"environ map", `environ["HOME"]`, "/home/user"},
		{"list", `[1, "a", true]`, []any{int64(1), "a", true}},
		{"map", `{"k": len(environ)}`, map[string]any{"k": int64(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpr(t.Context(), Request{Value: tt.src, Env: env})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseExpr(t.Context(), Request{Value: "1 +", Env: env})
	require.ErrorIs(t, err, pkg.ErrExprCompile)

	_, err = ParseExpr(t.Context(), Request{Value: `int(env("N"))`, Env: env})
	require.ErrorIs(t, err, pkg.ErrExprEvaluate)
}
