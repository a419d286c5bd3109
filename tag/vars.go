package tag

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/j2env/pkg"
)

// ResolveVars resolves the variables called names from src, in order.
//
// Tagged values are parsed; other values are copied verbatim. When a tag's
// configuration sets "flatten" and its value is a map, the map's keys are
// also copied into the result in sorted order. A variable that is missing
// from src or fails to resolve is logged as a warning and left out of the
// result; the pass itself never fails.
func (r *Resolver) ResolveVars(ctx context.Context, names []string, src Env) Context {
	out := make(Context, len(names))

	for _, name := range names {
		raw, ok := src.Lookup(name)
		if !ok {
			r.warn(ctx, name, pkg.ErrVariableNotFound)

			continue
		}

		cfg, v, err := r.Resolve(ctx, raw)
		if err != nil {
			r.warn(ctx, name, err)

			continue
		}

		out[name] = v

		if !cfg.Bool("flatten") {
			continue
		}

		if m, ok := v.(map[string]any); ok {
			for _, k := range slices.Sorted(maps.Keys(m)) {
				out[k] = m[k]
			}
		}
	}

	return out
}

// GetVars resolves the resolver's environment. An empty whitelist selects
// every variable in sorted order; names in blacklist are skipped.
func (r *Resolver) GetVars(ctx context.Context, whitelist, blacklist []string) Context {
	names := whitelist
	if len(names) == 0 {
		names = r.env.Names()
	}

	names = slices.DeleteFunc(slices.Clone(names), func(n string) bool {
		return slices.Contains(blacklist, n)
	})

	return r.ResolveVars(ctx, names, r.env)
}

func (r *Resolver) warn(ctx context.Context, name string, err error) {
	r.logger.WarnContext(ctx, "parsing variable failed",
		slog.String("variable", name),
		slog.String("error", err.Error()),
	)
}
