package cli

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/j2env/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// As Kong parses the --log-format flag, this method is called, allowing us
// to configure the logger early enough to affect error messages during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies the fully parsed configuration, including TimeLayout and
// Caller which are not seen by the TextUnmarshaler hooks.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to extract and
// apply logger configuration before Kong begins parsing. This ensures the
// logger is configured properly regardless of flag position on the command
// line, and that errors reported while loading the configuration file use it.
func (f *logConfig) scan(args []string) {
	for arg := range longFlags(args) {
		switch arg.name {
		case "log-level":
			if value, ok := arg.value(); ok {
				_ = f.Level.UnmarshalText([]byte(value))
			}

		case "log-format":
			if value, ok := arg.value(); ok {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "log-pretty", "no-log-pretty":
			if v, ok := arg.bool(); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}

		case "log-caller", "no-log-caller":
			if v, ok := arg.bool(); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

// longFlag is a "--name[=value]" argument found by [longFlags].
type longFlag struct {
	name     string
	inline   string
	assigned bool
	next     func() (string, bool)
}

// value returns the flag's value: the text after '=' or else the following
// argument when it does not look like a flag.
func (a longFlag) value() (string, bool) {
	if a.assigned {
		return a.inline, true
	}

	return a.next()
}

// bool returns the value of a boolean flag. Only an explicit "=value" is
// parsed; a bare flag is true, or false with the "no-" prefix.
func (a longFlag) bool() (bool, bool) {
	negated := strings.HasPrefix(a.name, "no-")

	if !a.assigned {
		return !negated, true
	}

	v, err := strconv.ParseBool(a.inline)
	if err != nil {
		return false, false
	}

	return v != negated, true
}

// longFlags returns an iterator over the long flags in args. Iteration stops
// at "--".
func longFlags(args []string) iter.Seq[longFlag] {
	return func(yield func(longFlag) bool) {
		for i := 0; i < len(args); i++ {
			arg := args[i]

			if arg == "--" {
				return
			}

			if !strings.HasPrefix(arg, "--") {
				continue
			}

			name, inline, assigned := strings.Cut(arg[2:], "=")

			pos := i
			flag := longFlag{
				name:     name,
				inline:   inline,
				assigned: assigned,
				next: func() (string, bool) {
					if pos+1 < len(args) && args[pos+1] != "" && args[pos+1][0] != '-' {
						i = pos + 1

						return args[i], true
					}

					return "", false
				},
			}

			if !yield(flag) {
				return
			}
		}
	}
}
