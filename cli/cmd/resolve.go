package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/tag"
)

// Resolve prints the template variables resolved from the environment.
type Resolve struct {
	Vars VarFlags `embed:""`

	Format string   `default:"json" enum:"json,yaml" help:"Output format (json, yaml)" short:"o"`
	Names  []string `arg:""         help:"Variables to resolve (default: all)"          optional:""`

	environ func() tag.Env
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.environ == nil {
		r.environ = tag.ProcessEnv
	}

	flags := r.Vars
	if len(r.Names) > 0 {
		flags.EnvWhitelist = r.Names
	}

	vars, err := flags.context(ctx, r.environ(), log.Default())
	if err != nil {
		return err
	}

	stdout, _ := outputFrom(ctx)

	return encode(stdout, r.Format, vars)
}

// encode writes v to w as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	if format == "yaml" {
		data, err := yaml.Marshal(v)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	_, err := buf.WriteTo(w)

	return err
}
