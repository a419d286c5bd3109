package tag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tree"
)

const (
	inlineKey  = "config="
	filePrefix = "file:"
)

// resolveConfig builds the configuration for e from, in increasing order of
// precedence, the <TAG>_CONFIG variable and an inline config segment at the
// start of value. A <TAG>_TOKEN variable fills in a missing token, and a
// token of the form "file:<path>" is replaced by the trimmed contents of
// path. The result is validated against the tag's schema. The returned
// payload has the inline segment removed.
func (r *Resolver) resolveConfig(
	ctx context.Context,
	e *entry,
	value string,
) (Config, string, error) {
	cfg := Config{}

	if src, ok := r.env.Lookup(e.ConfigVar()); ok {
		base, err := decodeObject(src)
		if err != nil {
			return nil, "", pkg.ErrDecodeJSON.Wrap(err).
				With(slog.String("variable", e.ConfigVar()))
		}

		cfg = base
	}

	if rest, ok := strings.CutPrefix(value, inlineKey); ok {
		d := r.markers.Detect(value)

		body, payload, found := strings.Cut(rest, d.ConfigEnd+":")
		if !found {
			return nil, "", pkg.ErrInvalidConfigMarkers.Wrapf(
				"please place the config between the markers '%s' and '%s'",
				d.ConfigStart, d.ConfigEnd,
			)
		}

		inline, err := decodeObject("{" + strings.TrimLeft(body, d.ConfigStart) + "}")
		if err != nil {
			return nil, "", pkg.ErrDecodeJSON.Wrap(err).With(slog.String("tag", e.Name))
		}

		maps.Copy(cfg, inline)

		value = payload
	}

	if _, ok := cfg["token"]; !ok {
		if tok, ok := r.env.Lookup(e.TokenVar()); ok {
			cfg["token"] = tok
		}
	}

	if tok, ok := cfg["token"].(string); ok {
		if path, ok := strings.CutPrefix(tok, filePrefix); ok {
			data, err := ReadFile(strings.TrimSpace(path))
			if err != nil {
				return nil, "", err
			}

			cfg["token"] = strings.TrimSpace(string(data))
		}
	}

	if err := Validate(e.schema, cfg); err != nil {
		if r.stacktrace {
			r.logger.ErrorContext(ctx, "config validation failed",
				slog.String("tag", e.Name),
				slog.String("detail", validationDetail(err)),
			)
		}

		return nil, "", pkg.ErrConfigValidation.Wrap(err).With(slog.String("tag", e.Name))
	}

	return cfg, value, nil
}

func decodeObject(src string) (Config, error) {
	v, err := tree.Decode([]byte(src))
	if err != nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}

	return Config(m), nil
}

func validationDetail(err error) string {
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("%#v", ve)
	}

	return err.Error()
}
