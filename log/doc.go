// Package log is the structured logger of j2env, built on [log/slog].
//
// Diagnostics go to stderr so they never mix with rendered output or the
// report lines printed on stdout. The package-level functions write through
// a default logger that the command line reconfigures once its flags are
// parsed:
//
//	log.Config(
//		log.WithLevel(log.ParseLevel("debug")),
//		log.WithFormat(log.ParseFormat("json")),
//	)
//	log.Warn("parsing variable failed",
//		slog.String("variable", "DB_URL"),
//		slog.String("error", "key not found"))
//
// # Levels and formats
//
// Levels are trace, debug, info, warn and error; trace sits below slog's
// debug level and is used for per-variable resolution detail. [Levels] and
// [Formats] enumerate the accepted names in the order they are listed in help
// output.
//
// The text format is the default. When pretty output is enabled (the
// default) keys and values are colored and JSON records are indented.
// Errors logged with [Err] expand into their attributes when they implement
// [slog.LogValuer].
//
// # Timestamps
//
// [WithTimeLayout] accepts a named layout of the [time] package, matched
// without regard to case or punctuation ("RFC3339", "rfc-3339-nano",
// "kitchen"), a short alias ("ms", "us", "ns"), or a literal layout. An empty
// layout or "none" drops the timestamp.
//
// # Repeated lines
//
// [Repeat] wraps a writer and collapses runs of identical lines, which keeps
// the console quiet when a watch loop reports the same result cycle after
// cycle.
package log
