package profile

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Config selects what is profiled and where the profile is written.
type Config struct {
	// Mode is one of [Modes]. Empty disables profiling.
	Mode string
	// Dir is the output directory. Empty uses the working directory.
	Dir string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Start starts the profiler described by c. It returns a no-op [Stopper]
// when c.Mode is empty, unknown, or the binary was built without the pprof
// build tag. Stop is always safe to call.
//
// The profiler installs no signal handler: an interrupted render or watch
// loop unwinds normally and the deferred Stop writes the profile.
func (c Config) Start() Stopper {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}
