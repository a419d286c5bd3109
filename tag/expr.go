package tag

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tree"
)

// ParseExpr evaluates the payload as an expr-lang expression. The
// expression sees env(name), returning the named variable or "", and
// environ, the whole environment snapshot.
func ParseExpr(_ context.Context, req Request) (any, error) {
	env := exprEnv(req.Env)

	program, err := expr.Compile(req.Value, expr.Env(env))
	if err != nil {
		return nil, pkg.ErrExprCompile.Wrap(err).
			With(slog.String("source", req.Value))
	}

	result, err := vm.Run(program, env)
	if err != nil {
		return nil, pkg.ErrExprEvaluate.Wrap(err).
			With(slog.String("source", req.Value))
	}

	out, err := tree.Roundtrip(result)
	if err != nil {
		return nil, pkg.ErrExprEvaluate.Wrap(err).
			With(slog.String("source", req.Value))
	}

	return out, nil
}

func exprEnv(e Env) map[string]any {
	environ := make(map[string]string, len(e))
	for k, v := range e {
		environ[k] = v
	}

	return map[string]any{
		"env": func(name string) string {
			return e[name]
		},
		"environ": environ,
	}
}
