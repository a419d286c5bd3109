package tag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/marker"
	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tree"
)

// Resolver resolves tagged values against a registry and an environment
// snapshot. A Resolver holds no mutable state and is safe for concurrent
// use.
type Resolver struct {
	registry   *Registry
	env        Env
	markers    marker.Config
	logger     log.Logger
	nested     bool
	stacktrace bool
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithRegistry sets the tag registry. The default is [Default].
func WithRegistry(r *Registry) Option {
	return func(res *Resolver) {
		if r != nil {
			res.registry = r
		}
	}
}

// WithEnv sets the environment snapshot consulted for <TAG>_CONFIG and
// <TAG>_TOKEN variables and by [Resolver.GetVars].
func WithEnv(env Env) Option {
	return func(res *Resolver) {
		if env != nil {
			res.env = env
		}
	}
}

// WithMarkers sets the marker configuration used to locate inline config
// segments.
func WithMarkers(m marker.Config) Option {
	return func(res *Resolver) { res.markers = m }
}

// WithNested enables resolution of tags nested in nestable results.
func WithNested(enable bool) Option {
	return func(res *Resolver) { res.nested = enable }
}

// WithLogger sets the logger receiving resolution warnings.
func WithLogger(l log.Logger) Option {
	return func(res *Resolver) { res.logger = l }
}

// WithStacktrace enables logging of schema validation details.
func WithStacktrace(enable bool) Option {
	return func(res *Resolver) { res.stacktrace = enable }
}

// NewResolver returns a Resolver configured by opts.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		registry: Default(),
		env:      Env{},
		logger:   log.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Registry returns the resolver's tag registry.
func (r *Resolver) Registry() *Registry { return r.registry }

// Env returns the resolver's environment snapshot.
func (r *Resolver) Env() Env { return r.env }

// NotImplemented returns the value produced for a tag name that is not
// registered.
func NotImplemented(name string) string {
	return fmt.Sprintf("** ERROR: tag: %s: not implemented **", strings.TrimSuffix(name, ":"))
}

// ParseTag resolves raw as the tag called name and returns the applied
// configuration and the value.
//
// The prefix and surrounding whitespace are removed, configuration is
// resolved for tags with a schema, and the tag's parser runs on the
// remaining payload. With nested resolution enabled, string leaves of a
// nestable tag's composite result are resolved as if each were a variable
// value. An unregistered name yields a nil config and the
// [NotImplemented] text without an error.
func (r *Resolver) ParseTag(ctx context.Context, name, raw string) (Config, any, error) {
	e, ok := r.registry.lookup(name)
	if !ok {
		return nil, NotImplemented(name), nil
	}

	return r.parse(ctx, e, raw)
}

func (r *Resolver) parse(ctx context.Context, e *entry, raw string) (Config, any, error) {
	value := strings.TrimSpace(strings.TrimPrefix(raw, e.Prefix()))
	cfg := Config{}

	if e.schema != nil {
		var err error

		cfg, value, err = r.resolveConfig(ctx, e, value)
		if err != nil {
			return nil, nil, err
		}
	}

	v, err := e.Parse(ctx, Request{Config: cfg, Value: value, Env: r.env})
	if err != nil {
		return nil, nil, err
	}

	if r.nested && e.Nestable {
		v, err = r.resolveNested(ctx, v)
		if err != nil {
			return nil, nil, pkg.ErrNestedTag.Wrap(err).With(slog.String("tag", e.Name))
		}
	}

	return cfg, v, nil
}

// Resolve classifies raw and resolves it. Untagged values are returned
// verbatim with a nil config.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Config, any, error) {
	e, ok := r.registry.classify(raw)
	if !ok {
		return nil, raw, nil
	}

	return r.parse(ctx, e, raw)
}

func (r *Resolver) resolveNested(ctx context.Context, v any) (any, error) {
	t := tree.Build(v)
	if !t.IsComposite() {
		return v, nil
	}

	for path, leaf := range t.Leaves() {
		s, ok := leaf.(string)
		if !ok {
			continue
		}

		_, out, err := r.Resolve(ctx, s)
		if err != nil {
			return nil, pkg.WrapError(err).With(slog.String("path", path.String()))
		}

		if err := t.Set(path, out); err != nil {
			return nil, err
		}
	}

	return t.Native(), nil
}
