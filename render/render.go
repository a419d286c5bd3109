// Package render renders templates with a resolved variable context.
//
// Each pass detects the template's delimiters with the configured
// [marker.Config] and executes it with strict undefined-variable semantics.
// With two-pass rendering enabled, the output of the first pass is detected
// and rendered again, so a template may emit template syntax for itself.
package render

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/marker"
	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tag"
)

// Renderer renders templates. It is safe for concurrent use.
type Renderer struct {
	markers marker.Config
	env     tag.Env
	logger  log.Logger
	twoPass bool
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithMarkers sets the marker configuration used before each pass.
func WithMarkers(m marker.Config) Option {
	return func(r *Renderer) { r.markers = m }
}

// WithTwoPass enables a second render pass over the first pass output.
func WithTwoPass(enable bool) Option {
	return func(r *Renderer) { r.twoPass = enable }
}

// WithEnv sets the environment snapshot read by the env() template
// function. The default is the process environment.
func WithEnv(env tag.Env) Option {
	return func(r *Renderer) {
		if env != nil {
			r.env = env
		}
	}
}

// WithLogger sets the logger receiving per-pass diagnostics.
func WithLogger(l log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New returns a Renderer configured by opts.
func New(opts ...Option) *Renderer {
	r := &Renderer{logger: log.Default()}

	for _, opt := range opts {
		opt(r)
	}

	if r.env == nil {
		r.env = tag.ProcessEnv()
	}

	return r
}

// RenderFile renders the template at path.
func (r *Renderer) RenderFile(ctx context.Context, path string, vars tag.Context) (string, error) {
	data, err := tag.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", pkg.ErrTemplateNotFound.Wrapf("%s", filepath.Base(path)).
				With(slog.String("path", path))
		}

		return "", err
	}

	return r.RenderString(ctx, path, string(data), filepath.Dir(path), vars)
}

// RenderString renders content as the template called name. Relative
// template references inside content resolve against dir.
func (r *Renderer) RenderString(
	ctx context.Context,
	name, content, dir string,
	vars tag.Context,
) (string, error) {
	out, err := r.pass(ctx, name, content, dir, vars)
	if err != nil || !r.twoPass {
		return out, err
	}

	return r.pass(ctx, name, out, dir, vars)
}

func (r *Renderer) pass(
	ctx context.Context,
	name, content, dir string,
	vars tag.Context,
) (out string, err error) {
	d := r.markers.Detect(content)
	a := aliasFor(d.BlockStart)

	r.logger.DebugContext(ctx, "render pass",
		slog.String("template", name),
		slog.Any("markers", d),
	)

	cfg := &config.Config{
		BlockStartString:    a.delim(d.BlockStart),
		BlockEndString:      d.BlockEnd,
		VariableStartString: d.VariableStart,
		VariableEndString:   d.VariableEnd,
		CommentStartString:  d.CommentStart,
		CommentEndString:    d.CommentEnd,
		AutoEscape:          false,
		StrictUndefined:     true,
	}

	env := &exec.Environment{
		Filters:           filters(),
		Tests:             builtins.Tests,
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
		Context:           builtins.GlobalFunctions,
	}

	// the engine panics on delimiters its lexer cannot compile
	defer func() {
		if v := recover(); v != nil {
			out, err = "", pkg.ErrTemplateSyntax.Wrapf("%v", v).
				With(slog.Any("markers", d))
		}
	}()

	tpl, err := exec.NewTemplate(name, cfg, newLoader(name, content, dir, a), env)
	if err != nil {
		return "", translate(err, true, a.in(content), a)
	}

	// variables shadow the template functions of the same name
	data := globals(r.env)
	maps.Copy(data, vars)

	out, err = tpl.ExecuteToString(exec.NewContext(data))
	if err != nil {
		return "", translate(err, false, "", a)
	}

	out = a.out(out)

	if strings.HasSuffix(content, "\n") && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	return out, nil
}
