// Package profile provides optional runtime profiling for j2env.
//
// Profiling integrates [github.com/pkg/profile] and is compiled in only with
// the "pprof" build tag. Without it, [Config.Start] returns a no-op and
// [Modes] is empty.
//
// Supported modes: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread, trace.
//
//	go build -tags pprof .
//	j2env --pprof-mode cpu --searchlist ./templates
//	go tool pprof -http=: ~/.cache/j2env/pprof/cpu.pprof
//
// The pprof build also registers the [net/http/pprof] handlers, which is
// useful for long-running watch loops:
//
//	j2env watch --watchlist DB_URL --run ./reload.sh --pprof-mode heap
//
// The default output directory is $XDG_CACHE_HOME/j2env/pprof.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
