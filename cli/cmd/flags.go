package cmd

import (
	"context"
	"os"

	"github.com/ardnew/j2env/log"
	"github.com/ardnew/j2env/marker"
	"github.com/ardnew/j2env/render"
	"github.com/ardnew/j2env/tag"
)

// MarkerFlags select the template delimiters.
type MarkerFlags struct {
	MarkerSet           string `default:"{{" help:"Marker set (${markerSets})"                   placeholder:"SET"`
	AutodetectMarkerSet bool   `             help:"Detect the marker set from template content"`

	BlockStart    string `help:"Override the block start marker"    placeholder:"MARKER"`
	BlockEnd      string `help:"Override the block end marker"      placeholder:"MARKER"`
	VariableStart string `help:"Override the variable start marker" placeholder:"MARKER"`
	VariableEnd   string `help:"Override the variable end marker"   placeholder:"MARKER"`
	CommentStart  string `help:"Override the comment start marker"  placeholder:"MARKER"`
	CommentEnd    string `help:"Override the comment end marker"    placeholder:"MARKER"`
	ConfigStart   string `help:"Override the config start marker"   placeholder:"MARKER"`
	ConfigEnd     string `help:"Override the config end marker"     placeholder:"MARKER"`
}

// config returns the marker selection described by the flags.
func (m MarkerFlags) config() (marker.Config, error) {
	cfg := marker.Config{
		Set:        m.MarkerSet,
		Autodetect: m.AutodetectMarkerSet,
		Override: marker.Delims{
			BlockStart:    m.BlockStart,
			BlockEnd:      m.BlockEnd,
			VariableStart: m.VariableStart,
			VariableEnd:   m.VariableEnd,
			CommentStart:  m.CommentStart,
			CommentEnd:    m.CommentEnd,
			ConfigStart:   m.ConfigStart,
			ConfigEnd:     m.ConfigEnd,
		},
	}

	return cfg, cfg.Validate()
}

// VarFlags control how environment variables become template variables.
type VarFlags struct {
	EnvWhitelist []string `help:"Only resolve these environment variables"  placeholder:"NAME" sep:","`
	EnvBlacklist []string `help:"Never resolve these environment variables" placeholder:"NAME" sep:","`
	NestedTags   bool     `help:"Resolve tags nested inside JSON values"`
	Stacktrace   bool     `help:"Include diagnostic traces in errors"`

	Markers MarkerFlags `embed:""`
}

// resolver returns a tag resolver over env.
func (v VarFlags) resolver(env tag.Env, logger log.Logger) (*tag.Resolver, error) {
	markers, err := v.Markers.config()
	if err != nil {
		return nil, err
	}

	return tag.NewResolver(
		tag.WithEnv(env),
		tag.WithMarkers(markers),
		tag.WithNested(v.NestedTags),
		tag.WithStacktrace(v.Stacktrace),
		tag.WithLogger(logger),
	), nil
}

// context resolves the selected variables of env.
func (v VarFlags) context(
	ctx context.Context,
	env tag.Env,
	logger log.Logger,
) (tag.Context, error) {
	r, err := v.resolver(env, logger)
	if err != nil {
		return nil, err
	}

	return r.GetVars(ctx, v.EnvWhitelist, v.EnvBlacklist), nil
}

// RenderFlags configure which templates are rendered and how results are
// written.
type RenderFlags struct {
	Extension  string   `aliases:"ext" default:".j2" help:"Template file extension"                                                   short:"e"`
	Filelist   []string `                            help:"Templates to render (disables the search list)" placeholder:"FILE" sep:"," short:"f"`
	Searchlist []string `default:"."                 help:"Directories to search for templates"            placeholder:"DIR"  sep:"," short:"s" env:"J2ENV_SEARCHLIST"`
	Recursive  bool     `                            help:"Traverse the search list recursively"                                       short:"r"`

	Noop                bool `help:"Only render the templates, don't write to disk" short:"N"`
	NoColor             bool `help:"Disable the use of ANSI color escapes"`
	Twopass             bool `help:"Render each template twice"`
	CopyFilePermissions bool `help:"Copy mode and ownership from each template to its output"`
	Stderr              bool `help:"Print render errors to stderr instead of writing .err files"`
	TestFirst           bool `help:"Write nothing unless every template renders"`

	Run []string `help:"Command to execute after every template rendered, one argument per flag" placeholder:"ARG" sep:"none"`

	Vars VarFlags `embed:""`
}

// job returns a render job for the flags.
func (f RenderFlags) job(ctx context.Context) (*job, error) {
	if _, err := f.Vars.Markers.config(); err != nil {
		return nil, err
	}

	stdout, stderr := outputFrom(ctx)

	return &job{
		flags:  f,
		report: newReporter(stdout, !f.NoColor && isTerminal(stdout)),
		stderr: stderr,
		logger: log.Default(),
	}, nil
}

// renderer returns a template renderer for one run over env.
func (f RenderFlags) renderer(env tag.Env, logger log.Logger) *render.Renderer {
	markers, _ := f.Vars.Markers.config()

	return render.New(
		render.WithMarkers(markers),
		render.WithTwoPass(f.Twopass),
		render.WithEnv(env),
		render.WithLogger(logger),
	)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)

	return ok && isTTY(f.Fd())
}
