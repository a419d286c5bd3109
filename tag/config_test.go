package tag

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/marker"
	"github.com/ardnew/j2env/pkg"
)

// recorder is a tag whose parser records the request it receives.
type recorder struct {
	calls []Request
}

func (rec *recorder) parse(_ context.Context, req Request) (any, error) {
	rec.calls = append(rec.calls, req)

	return req.Value, nil
}

func (rec *recorder) last(t *testing.T) Request {
	t.Helper()
	require.NotEmpty(t, rec.calls)

	return rec.calls[len(rec.calls)-1]
}

// newRecording returns a resolver whose registry holds a single "vault" kind
// using the real vault schema and a recording parser.
func newRecording(t *testing.T, opts ...Option) (*Resolver, *recorder) {
	t.Helper()

	rec := &recorder{}

	reg, err := NewRegistry(Kind{Name: "vault", Parse: rec.parse, Schema: VaultSchema})
	require.NoError(t, err)

	return NewResolver(append([]Option{WithRegistry(reg)}, opts...)...), rec
}

func TestConfig_NoConfig(t *testing.T) {
	r, rec := newRecording(t)

	cfg, v, err := r.ParseTag(t.Context(), "vault:", "vault: secret/mysecret ")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
	assert.Equal(t, "secret/mysecret", v)
	assert.Equal(t, Config{}, rec.last(t).Config)
}

func TestConfig_Inline(t *testing.T) {
	r, rec := newRecording(t)

	_, _, err := r.ParseTag(t.Context(), "vault:",
		`vault:config={"url": "https://localhost:8200"}:secret/mysecret`)
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, Config{"url": "https://localhost:8200"}, req.Config)
	assert.Equal(t, "secret/mysecret", req.Value)
}

func TestConfig_InlineAlternativeMarkers(t *testing.T) {
	r, rec := newRecording(t, WithMarkers(marker.Config{
		Override: marker.Delims{ConfigStart: "[", ConfigEnd: "]"},
	}))

	_, _, err := r.ParseTag(t.Context(), "vault:",
		`vault:config=["url": "https://localhost:8200"]:secret/mysecret`)
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, Config{"url": "https://localhost:8200"}, req.Config)
	assert.Equal(t, "secret/mysecret", req.Value)
}

func TestConfig_InlineAutodetectedMarkers(t *testing.T) {
	r, rec := newRecording(t, WithMarkers(marker.Config{Autodetect: true}))

	_, _, err := r.ParseTag(t.Context(), "vault:",
		`vault:config=("backend": "kv2"):secret/app`)
	require.NoError(t, err)

	assert.Equal(t, Config{"backend": "kv2"}, rec.last(t).Config)
}

func TestConfig_EnvLayers(t *testing.T) {
	env := Env{
		"VAULT_CONFIG": `{"url": "https://localhost:8200", "backend": "kv1"}`,
		"VAULT_TOKEN":  "aabbccddee",
	}

	r, rec := newRecording(t, WithEnv(env))

	_, _, err := r.ParseTag(t.Context(), "vault:", "vault:secret/mysecret")
	require.NoError(t, err)
	assert.Equal(t, Config{
		"url":     "https://localhost:8200",
		"backend": "kv1",
		"token":   "aabbccddee",
	}, rec.last(t).Config)

	// inline config wins over the environment, and an explicit token wins
	// over VAULT_TOKEN
	_, _, err = r.ParseTag(t.Context(), "vault:",
		`vault:config={"backend": "kv2", "token": "ffgghhiijj"}:secret/mysecret`)
	require.NoError(t, err)
	assert.Equal(t, Config{
		"url":     "https://localhost:8200",
		"backend": "kv2",
		"token":   "ffgghhiijj",
	}, rec.last(t).Config)
}

func TestConfig_TokenFromFile(t *testing.T) {
	path := writeFile(t, "token", "  aabbccddee\n")

	r, rec := newRecording(t)

	_, _, err := r.ParseTag(t.Context(), "vault:",
		`vault:config={"url": "https://localhost:8200", "token": "file:`+path+`"}:secret/mysecret`)
	require.NoError(t, err)
	assert.Equal(t, Config{
		"url":   "https://localhost:8200",
		"token": "aabbccddee",
	}, rec.last(t).Config)

	// the env token is subject to the same indirection
	r, rec = newRecording(t, WithEnv(Env{"VAULT_TOKEN": "file:" + path}))

	_, _, err = r.ParseTag(t.Context(), "vault:", "vault:secret/mysecret")
	require.NoError(t, err)
	assert.Equal(t, "aabbccddee", rec.last(t).Config["token"])
}

func TestConfig_TokenFileMissing(t *testing.T) {
	r, rec := newRecording(t, WithEnv(Env{"VAULT_TOKEN": "file:/nonexistent/token"}))

	_, _, err := r.ParseTag(t.Context(), "vault:", "vault:secret/mysecret")
	require.ErrorIs(t, err, pkg.ErrReadFile)
	assert.Empty(t, rec.calls)
}

func TestConfig_ValidationFailure(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithFormat(log.FormatJSON), log.WithPretty(false))

	r, rec := newRecording(t, WithStacktrace(true), WithLogger(logger))

	tests := []string{
		`vault:config={"invalid": "foobar"}:secret/mysecret`,
		`vault:config={"backend": "kv3"}:secret/mysecret`,
		`vault:config={"port": 70000}:secret/mysecret`,
		`vault:config={"token": "abc"}:secret/mysecret`,
		`vault:config={"scheme": "ftp"}:secret/mysecret`,
		`vault:config={"url": "not a url"}:secret/mysecret`,
		`vault:config={"flatten": "yes"}:secret/mysecret`,
	}

	for _, raw := range tests {
		_, _, err := r.ParseTag(t.Context(), "vault:", raw)
		require.ErrorIs(t, err, pkg.ErrConfigValidation, raw)
		assert.Contains(t, err.Error(), "config validation failed")
	}

	assert.Empty(t, rec.calls)
	assert.Contains(t, buf.String(), `"msg":"config validation failed"`)
	assert.Contains(t, buf.String(), `"detail"`)
}

func TestConfig_ValidationQuietWithoutStacktrace(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithFormat(log.FormatJSON), log.WithPretty(false))

	r, _ := newRecording(t, WithLogger(logger))

	_, _, err := r.ParseTag(t.Context(), "vault:", `vault:config={"invalid": 1}:x`)
	require.ErrorIs(t, err, pkg.ErrConfigValidation)
	assert.Empty(t, buf.String())
}

func TestConfig_DecodeFailures(t *testing.T) {
	r, rec := newRecording(t)

	_, _, err := r.ParseTag(t.Context(), "vault:", `vault:config={"<invalid>"}::secret/mysecret`)
	require.ErrorIs(t, err, pkg.ErrDecodeJSON)
	assert.Contains(t, err.Error(), "decoding JSON failed")

	r, _ = newRecording(t, WithEnv(Env{"VAULT_CONFIG": "{not json"}))

	_, _, err = r.ParseTag(t.Context(), "vault:", "vault:secret/mysecret")
	require.ErrorIs(t, err, pkg.ErrDecodeJSON)

	r, _ = newRecording(t, WithEnv(Env{"VAULT_CONFIG": `["a"]`}))

	_, _, err = r.ParseTag(t.Context(), "vault:", "vault:secret/mysecret")
	require.ErrorIs(t, err, pkg.ErrDecodeJSON)

	assert.Empty(t, rec.calls)
}

func TestConfig_WrongMarkers(t *testing.T) {
	r, _ := newRecording(t)

	_, _, err := r.ParseTag(t.Context(), "vault:", `vault:config=|"type": "SRV"`)
	require.ErrorIs(t, err, pkg.ErrInvalidConfigMarkers)
	assert.Contains(t, err.Error(),
		"invalid config markers used: please place the config between the markers '{' and '}'")
}

func TestConfig_DNSSchema(t *testing.T) {
	r := NewResolver()

	_, _, err := r.ParseTag(t.Context(), "dns:",
		`dns:config={"nameservers": ["not-an-ip"]}:example.com`)
	require.ErrorIs(t, err, pkg.ErrConfigValidation)

	_, _, err = r.ParseTag(t.Context(), "dns:", `dns:config={"type": "TXT"}:example.com`)
	require.ErrorIs(t, err, pkg.ErrConfigValidation)
}

func TestConfig_Accessors(t *testing.T) {
	c := Config{
		"b":    true,
		"s":    "str",
		"i":    int64(42),
		"f":    8.9,
		"list": []any{"a", 1, "b"},
	}

	assert.True(t, c.Bool("b"))
	assert.False(t, c.Bool("s"))
	assert.Equal(t, "str", c.String("s"))
	assert.Empty(t, c.String("i"))
	assert.Equal(t, 42, c.Int("i"))
	assert.Equal(t, 8, c.Int("f"))
	assert.Zero(t, c.Int("missing"))
	assert.Equal(t, []string{"a", "b"}, c.Strings("list"))
	assert.Nil(t, c.Strings("s"))
}

func TestCompileSchema_LocationIndependent(t *testing.T) {
	s, err := CompileSchema("consul", ConsulSchema)
	require.NoError(t, err)

	err = Validate(s, map[string]any{"port": 70000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mem:///consul.json")
	assert.NotContains(t, err.Error(), "file://")
}
