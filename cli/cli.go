package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/j2env/cli/cmd"
	"github.com/ardnew/j2env/marker"
	"github.com/ardnew/j2env/pkg"
)

// CLI is the top-level command-line interface for j2env.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Config  string           `default:"${config}" help:"Configuration file (YAML or JSON)" placeholder:"PATH" type:"path"`
	Version kong.VersionFlag `                    help:"Print version and exit"                                          short:"v"`

	Render  cmd.Render  `cmd:"" default:"withargs" help:"Render templates (default)"`
	Watch   cmd.Watch   `cmd:""                    help:"Render templates whenever watched variables change"`
	Resolve cmd.Resolve `cmd:""                    help:"Print the resolved template variables"`
	Tags    cmd.Tags    `cmd:""                    help:"List the supported tags"`
	Markers cmd.Markers `cmd:""                    help:"Show the marker sets or the markers detected in templates"`
	Init    cmd.Init    `cmd:""                    help:"Write a configuration file with the current settings"`
}

// Run executes the j2env CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath, configFiles := configFiles(args)

	vars := kong.Vars{
		cmd.ConfigIdentifier:     configFilePath,
		cmd.CacheIdentifier:      pkg.CacheDir(),
		cmd.MarkerSetsIdentifier: strings.Join(marker.Names(), " "),
		"version":                pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(load, configFiles...),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	ktx.BindTo(ctx, (*context.Context)(nil))

	return ktx.Run(&cli)
}
