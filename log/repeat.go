package log

import (
	"io"
	"strconv"
	"sync"
)

// Repeat suppression defaults.
const (
	DefaultRepeatPrintAt   = 5
	DefaultRepeatIncrement = 5
)

// Repeat writes messages to an underlying writer while collapsing runs of
// identical messages. The first occurrence of a message is written. Repeats
// are dropped until the run reaches the current threshold, at which point the
// message is written once more prefixed with "(Nx) " and the threshold grows
// by the increment.
//
// A Repeat is safe for concurrent use. Each instance tracks its own history.
type Repeat struct {
	w         io.Writer
	last      string
	mu        sync.Mutex
	count     int
	printAt   int
	increment int
}

// NewRepeat returns a Repeat writing to w with the default threshold and
// increment.
func NewRepeat(w io.Writer) *Repeat {
	return &Repeat{
		w:         w,
		count:     1,
		printAt:   DefaultRepeatPrintAt,
		increment: DefaultRepeatIncrement,
	}
}

// WriteString writes msg unless it repeats the previous message and the
// repeat threshold has not been reached. It reports whether anything was
// written.
func (r *Repeat) WriteString(msg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		out   string
		wrote bool
	)

	switch {
	case r.last != msg:
		out, wrote = msg, true
		r.count = 0

	case r.count == r.printAt:
		out, wrote = "("+strconv.Itoa(r.printAt)+"x) "+msg, true
		r.printAt += r.increment
		r.count = 0
	}

	r.count++
	r.last = msg

	if !wrote {
		return false, nil
	}

	_, err := io.WriteString(r.w, out)

	return true, err
}

// Write implements io.Writer over [Repeat.WriteString].
func (r *Repeat) Write(p []byte) (int, error) {
	_, err := r.WriteString(string(p))
	if err != nil {
		return 0, err
	}

	return len(p), nil
}
