// Package cli contains the command line interface for j2env.
//
// # Usage
//
// Without a command, j2env renders every template found in the search list:
//
//	j2env --searchlist /etc/app --recursive
//	j2env render --filelist app.conf.j2,db.conf.j2 --twopass
//	j2env watch --watchlist DB_URL --run systemctl --run reload --run app
//	j2env resolve --format yaml DB_URL
//	j2env tags
//	j2env markers --autodetect-marker-set template.j2
//
// # Configuration File
//
// Every flag can also be set in a configuration file, by default
// $XDG_CONFIG_HOME/j2env/config.yaml (or config.json, config.yml). The
// --config flag selects another file. The file holds a single object whose
// keys are flag names with hyphens or underscores:
//
//	extension: .tmpl
//	searchlist: [/etc/app]
//	recursive: true
//	marker_set: "[="
//	run: [systemctl, reload, app]
//
// JSON files may contain comments. The file is validated before use and an
// unknown key is an error. Command-line flags override file values. The
// init command writes the current settings to the configuration file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// Logging flags are applied before the command line is parsed, so they also
// affect errors reported while loading the configuration file.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o j2env .
//
// The build then accepts:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/j2env/pprof)
package cli
