package log

import (
	"io"
	"sync"
)

// Option applies a configuration option to config.
type Option func(config) config

// apply applies multiple options to a config.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// set returns an Option that calls fn on the config while holding its write
// lock. A config without a mutex gets a new one.
func set(fn func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		} else {
			c.mutex.Lock()
			defer c.mutex.Unlock()
		}

		fn(&c)

		return c
	}
}

// WithDefaults returns an Option that writes to w with [DefaultTimeLayout],
// [DefaultLevel], [DefaultFormat], [DefaultCaller] and [DefaultPretty].
// A nil w discards output.
func WithDefaults(w io.Writer) Option {
	return set(func(c *config) {
		c.output = orDiscard(w)
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput returns an Option that sets the output writer. A nil w discards
// output.
func WithOutput(w io.Writer) Option {
	return set(func(c *config) { c.output = orDiscard(w) })
}

// WithLevel returns an Option that sets the minimum log level.
func WithLevel(level Level) Option {
	return set(func(c *config) { c.level = level })
}

// WithFormat returns an Option that sets the output format.
func WithFormat(format Format) Option {
	return set(func(c *config) { c.format = format })
}

// WithTimeLayout returns an Option that sets the timestamp layout: a named
// layout of the [time] package, an alias such as "ms", or a literal layout.
// A blank layout or "none" removes timestamps.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return set(func(c *config) { c.formatTime = format })
}

// WithCaller returns an Option that controls whether records carry their
// source location.
func WithCaller(enable bool) Option {
	return set(func(c *config) { c.caller = enable })
}

// WithPretty returns an Option that controls colored output. Text records
// drop quoting and color keys; JSON records are indented.
func WithPretty(enable bool) Option {
	return set(func(c *config) { c.pretty = enable })
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}
