package cli

import (
	"bytes"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/jsonc"

	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tag"
	"github.com/ardnew/j2env/tree"
)

// configSchema constrains the keys and value types of a configuration file.
// Keys are flag names in their underscore form.
const configSchema = `{
	"type": "object",
	"properties": {
		"log_level":             {"type": "string", "enum": ["trace", "debug", "info", "warn", "error"]},
		"log_format":            {"type": "string", "enum": ["json", "text"]},
		"log_time_layout":       {"type": "string"},
		"log_caller":            {"type": "boolean"},
		"log_pretty":            {"type": "boolean"},
		"pprof_mode":            {"type": "string"},
		"pprof_dir":             {"type": "string"},
		"extension":             {"type": "string"},
		"filelist":              {"type": "array", "items": {"type": "string"}},
		"searchlist":            {"type": "array", "items": {"type": "string"}},
		"env_whitelist":         {"type": "array", "items": {"type": "string"}},
		"env_blacklist":         {"type": "array", "items": {"type": "string"}},
		"watchlist":             {"type": "array", "items": {"type": "string"}},
		"run":                   {"type": "array", "items": {"type": "string"}},
		"recursive":             {"type": "boolean"},
		"no_color":              {"type": "boolean"},
		"twopass":               {"type": "boolean"},
		"noop":                  {"type": "boolean"},
		"stderr":                {"type": "boolean"},
		"test_first":            {"type": "boolean"},
		"copy_file_permissions": {"type": "boolean"},
		"nested_tags":           {"type": "boolean"},
		"stacktrace":            {"type": "boolean"},
		"initial_run":           {"type": "boolean"},
		"marker_set":            {"type": "string", "enum": ["{{", "{=", "<=", "[=", "(="]},
		"autodetect_marker_set": {"type": "boolean"},
		"block_start":           {"type": ["string", "null"]},
		"block_end":             {"type": ["string", "null"]},
		"variable_start":        {"type": ["string", "null"]},
		"variable_end":          {"type": ["string", "null"]},
		"comment_start":         {"type": ["string", "null"]},
		"comment_end":           {"type": ["string", "null"]},
		"config_start":          {"type": ["string", "null"]},
		"config_end":            {"type": ["string", "null"]},
		"splay":                 {"type": "integer", "minimum": 0, "maximum": 900},
		"interval":              {"type": ["string", "number"]},
		"format":                {"type": "string", "enum": ["json", "yaml"]}
	},
	"additionalProperties": false
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return tag.CompileSchema("configfile", configSchema)
})

// load is a [kong.ConfigurationLoader] that reads a YAML or JSON
// configuration file. JSON may contain comments and trailing commas.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(load, "/path/to/config.yaml")
//
// The document must be a single object whose keys are flag names, written
// with either hyphens or underscores:
//
//	log_level: debug
//	searchlist: [/etc/app, /srv/app]
//	marker_set: "[="
//	splay: 30
//
// The object is validated before any value is applied. Command-line flags
// override configuration file values.
func load(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrConfigFile.Wrap(err)
	}

	doc, err := decodeConfig(data)
	if err != nil {
		return nil, pkg.ErrConfigFile.Wrap(err)
	}

	normal := make(map[string]any, len(doc))
	for key, value := range doc {
		normal[strings.ReplaceAll(key, "-", "_")] = value
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, pkg.ErrConfigFile.Wrap(err)
	}

	if err := tag.Validate(schema, normal); err != nil {
		return nil, pkg.ErrConfigFile.Wrap(err).
			With(slog.String("detail", strings.TrimSpace(err.Error())))
	}

	return config(stringify(normal)), nil
}

// decodeConfig parses data as JSON first and falls back to YAML.
func decodeConfig(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	if v, err := tree.Decode(jsonc.ToJSON(data)); err == nil {
		doc, ok := v.(map[string]any)
		if !ok {
			return nil, pkg.Errorf("configuration must be an object, not %T", v)
		}

		return doc, nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc == nil {
		doc = map[string]any{}
	}

	return doc, nil
}

// stringify converts scalar numbers to strings. Kong parses numeric flag
// values from their text form. A number given for a duration flag counts
// seconds.
func stringify(doc map[string]any) map[string]any {
	for key, value := range doc {
		var text string

		switch n := value.(type) {
		case int:
			text = strconv.Itoa(n)
		case int64:
			text = strconv.FormatInt(n, 10)
		case uint64:
			text = strconv.FormatUint(n, 10)
		case float64:
			text = strconv.FormatFloat(n, 'f', -1, 64)
		case nil:
			delete(doc, key)

			continue
		default:
			continue
		}

		if slices.Contains(durationKeys, key) {
			text += "s"
		}

		doc[key] = text
	}

	return doc
}

// durationKeys are the configuration keys of duration flags.
var durationKeys = []string{"interval"}

// config implements [kong.Resolver] over a decoded configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// The document was validated against configSchema when loaded.
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") while configuration keys
	// are stored with underscores. Try both forms.
	name := flag.Name

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
