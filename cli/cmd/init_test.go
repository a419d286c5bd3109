package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type initTestCLI struct {
	Config      string   `default:"${config}"`
	Extension   string   `default:".j2"`
	Searchlist  []string `default:"."        sep:","`
	Recursive   bool
	Interval    time.Duration `default:"1s"`
	MarkerSet   string        `default:"{{"`
	ConfigStart string
	Empty       string

	Init Init `cmd:""`
}

func runInit(t *testing.T, confPath string, args ...string) error {
	t.Helper()

	var cli initTestCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	require.NoError(t, err)

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	require.NoError(t, err)

	return cli.Init.Run(WithContext(context.Background(), ktx))
}

func TestInit_Run(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "j2env", "config.yaml")

	require.NoError(t, runInit(t, confPath))

	data, err := os.ReadFile(confPath)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, ".j2", doc["extension"])
	assert.Equal(t, []any{"."}, doc["searchlist"])
	assert.Equal(t, false, doc["recursive"])
	assert.Equal(t, "1s", doc["interval"])
	assert.Equal(t, "{{", doc["marker_set"])

	for _, key := range []string{"config", "config_start", "empty", "help", "force"} {
		assert.NotContains(t, doc, key)
	}

	info, err := os.Stat(confPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInit_Exists(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte("existing"), 0o600))

	err := runInit(t, confPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteConfig)
	assert.ErrorIs(t, err, ErrFileExists)

	data, err := os.ReadFile(confPath)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))

	require.NoError(t, runInit(t, confPath, "--force"))

	data, err = os.ReadFile(confPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "extension: .j2")
}

func TestInit_FlagValues(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, runInit(t, confPath, "--recursive"))

	var doc yaml.MapSlice

	data, err := os.ReadFile(confPath)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &doc))

	keys := make([]any, 0, len(doc))
	for _, item := range doc {
		keys = append(keys, item.Key)
	}

	assert.Equal(t, []any{"extension", "searchlist", "recursive", "interval", "marker_set"}, keys)
	assert.Equal(t, true, doc.ToMap()["recursive"])
}
