package render

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/goccy/go-yaml"
	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/exec"

	"github.com/ardnew/j2env/tag"
)

type function = func(*exec.Evaluator, *exec.VarArgs) *exec.Value

// filters are registered once with the engine's built-in filter set.
var filters = sync.OnceValue(func() *exec.FilterSet {
	return builtins.Filters.Update(exec.NewFilterSet(map[string]exec.FilterFunction{
		"b64encode": filterB64Encode,
		"b64decode": filterB64Decode,
		"to_json":   filterToJSON,
		"to_yaml":   filterToYAML,
	}))
})

// globals returns the functions available to every template rendered with
// env as its environment snapshot.
func globals(env tag.Env) map[string]any {
	return map[string]any{
		"env":      envFunc(env),
		"pathlist": function(pathList),
	}
}

func args(params *exec.VarArgs) []string {
	if params == nil {
		return nil
	}

	out := make([]string, len(params.Args))
	for i, a := range params.Args {
		out[i] = a.String()
	}

	return out
}

func invalid(err error) *exec.Value {
	return exec.AsValue(exec.ErrInvalidCall(err))
}

// envFunc implements env(name[, default]).
func envFunc(env tag.Env) function {
	return func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
		a := args(params)

		switch len(a) {
		case 1:
			return exec.AsValue(env[a[0]])
		case 2:
			if v, ok := env.Lookup(a[0]); ok {
				return exec.AsValue(v)
			}

			return exec.AsValue(a[1])
		default:
			return invalid(errors.New("env(name[, default]) takes 1 or 2 arguments"))
		}
	}
}

// pathList implements pathlist(subject, prefix...), prepending each prefix
// to the PATH-style list subject.
func pathList(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
	a := args(params)
	if len(a) == 0 {
		return invalid(errors.New("pathlist(subject, prefix...) requires a subject"))
	}

	return exec.AsValue(mung.Make(
		mung.WithSubjectItems(a[0]),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(a[1:]...),
	).String())
}

func filterB64Encode(_ *exec.Evaluator, in *exec.Value, _ *exec.VarArgs) *exec.Value {
	return exec.AsValue(base64.StdEncoding.EncodeToString([]byte(in.String())))
}

func filterB64Decode(_ *exec.Evaluator, in *exec.Value, _ *exec.VarArgs) *exec.Value {
	b, err := base64.StdEncoding.DecodeString(in.String())
	if err != nil {
		return exec.AsValue(fmt.Errorf("filter b64decode: %w", err))
	}

	return exec.AsValue(string(b))
}

func filterToJSON(_ *exec.Evaluator, in *exec.Value, _ *exec.VarArgs) *exec.Value {
	b, err := json.Marshal(in.Interface())
	if err != nil {
		return exec.AsValue(fmt.Errorf("filter to_json: %w", err))
	}

	return exec.AsValue(string(b))
}

func filterToYAML(_ *exec.Evaluator, in *exec.Value, _ *exec.VarArgs) *exec.Value {
	b, err := yaml.Marshal(in.Interface())
	if err != nil {
		return exec.AsValue(fmt.Errorf("filter to_yaml: %w", err))
	}

	return exec.AsValue(strings.TrimSuffix(string(b), "\n"))
}
