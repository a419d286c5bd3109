package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/pkg"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	require.NoError(t, err)

	return val
}

func TestLoad_YAML(t *testing.T) {
	r, err := load(strings.NewReader(`
log_level: debug
extension: .tmpl
searchlist: [/etc/app, /srv/app]
recursive: true
marker_set: "[="
splay: 30
interval: 1m
block_start: null
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", resolveFlag(t, r, "log-level"))
	assert.Equal(t, ".tmpl", resolveFlag(t, r, "extension"))
	assert.Equal(t, []any{"/etc/app", "/srv/app"}, resolveFlag(t, r, "searchlist"))
	assert.Equal(t, true, resolveFlag(t, r, "recursive"))
	assert.Equal(t, "[=", resolveFlag(t, r, "marker-set"))
	assert.Equal(t, "30", resolveFlag(t, r, "splay"))
	assert.Equal(t, "1m", resolveFlag(t, r, "interval"))
	assert.Nil(t, resolveFlag(t, r, "block-start"))
	assert.Nil(t, resolveFlag(t, r, "noop"))
}

func TestLoad_JSONWithComments(t *testing.T) {
	r, err := load(strings.NewReader(`{
	// templates live next to the service
	"searchlist": ["/srv/app"],
	"twopass": true,
	"splay": 15,
	"interval": 2.5,
}`))
	require.NoError(t, err)

	assert.Equal(t, []any{"/srv/app"}, resolveFlag(t, r, "searchlist"))
	assert.Equal(t, true, resolveFlag(t, r, "twopass"))
	assert.Equal(t, "15", resolveFlag(t, r, "splay"))
	assert.Equal(t, "2.5s", resolveFlag(t, r, "interval"))
}

func TestLoad_HyphenatedKeys(t *testing.T) {
	r, err := load(strings.NewReader(`{"env-whitelist": ["HOME"], "no-color": true}`))
	require.NoError(t, err)

	assert.Equal(t, []any{"HOME"}, resolveFlag(t, r, "env-whitelist"))
	assert.Equal(t, true, resolveFlag(t, r, "no_color"))
}

func TestLoad_Empty(t *testing.T) {
	r, err := load(strings.NewReader("  \n"))
	require.NoError(t, err)

	assert.Nil(t, resolveFlag(t, r, "extension"))
	assert.NoError(t, r.Validate(nil))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `{"unknown": true}`},
		{"wrong type", `{"recursive": "yes"}`},
		{"splay too large", `splay: 901`},
		{"unknown marker set", `marker_set: "=="`},
		{"not an object", `["a", "b"]`},
		{"malformed", "extension: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, pkg.ErrConfigFile)
		})
	}
}

func TestConfigFiles(t *testing.T) {
	primary, paths := configFiles([]string{"render", "--config", "/tmp/j2env.yaml"})
	assert.Equal(t, "/tmp/j2env.yaml", primary)
	assert.Equal(t, []string{"/tmp/j2env.yaml"}, paths)

	primary, paths = configFiles([]string{"--config=/tmp/other.json"})
	assert.Equal(t, "/tmp/other.json", primary)
	assert.Equal(t, []string{"/tmp/other.json"}, paths)

	primary, paths = configFiles([]string{"--", "--config", "/ignored"})
	assert.Equal(t, configPath("config.yaml"), primary)
	assert.Equal(t, []string{
		configPath("config.json"),
		configPath("config.yaml"),
		configPath("config.yml"),
	}, paths)
}
