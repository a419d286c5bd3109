package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Domain errors shared by tag resolution and rendering.
// Test for them with errors.Is; wrapped copies compare equal to their sentinel.
var (
	ErrDecodeJSON           = NewError("decoding JSON failed")
	ErrConfigValidation     = NewError("config validation failed")
	ErrInvalidConfigMarkers = NewError("invalid config markers used")
	ErrAccessDenied         = NewError("access denied")
	ErrKeyNotFound          = NewError("key not found")
	ErrInvalidBase64        = NewError("invalid BASE64 string")
	ErrInvalidJSON          = NewError("invalid JSON")
	ErrReadFile             = NewError("IOError raised while reading file")
	ErrTemplateNotFound     = NewError("template not found")
	ErrUndefinedVariable    = NewError("undefined variable")
	ErrFilterArgument       = NewError("invalid filter argument")
	ErrTemplateSyntax       = NewError("template syntax error")
	ErrRender               = NewError("render failed")
	ErrNestedTag            = NewError("failed to resolve nested tag")
	ErrVariableNotFound     = NewError("variable not found")
	ErrConnect              = NewError("failed to connect to URL")
	ErrBackendStatus        = NewError("backend request failed")
	ErrUnknownBackend       = NewError("Unknown K/V backend")
	ErrDNSQuery             = NewError("dns query failed")
	ErrDNSTimeout           = NewError("The DNS operation timed out")
	ErrExprCompile          = NewError("expression compilation failed")
	ErrExprEvaluate         = NewError("expression evaluation failed")
	ErrUnknownMarkerSet     = NewError("unknown marker set")
	ErrRegister             = NewError("tag registration failed")
	ErrConfigFile           = NewError("invalid configuration file")
)

// Error is the single error representation used across resolution and
// rendering. It carries a message, an optional wrapped cause, and attributes
// for structured logging.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Errorf creates a new Error with a formatted message.
func Errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// WrapError returns err as an *Error, wrapping it only if no *Error is
// already present in its chain.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "", depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Message returns the message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same non-empty message.
// This lets errors.Is match a wrapped or attributed copy of a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// Wrapf creates a new Error wrapping a formatted error.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) []error {
	if err == nil {
		return nil
	}

	var chain []error

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}

// Trace renders the error chain of err, outermost first, one layer per line
// with any structured attributes. It is the diagnostic written when stack
// traces are requested.
func Trace(err error) string {
	chain := UnwrapErrors(err)

	var sb strings.Builder

	sb.WriteString("Traceback (most recent error last):\n")

	for i := len(chain) - 1; i >= 0; i-- {
		layer := chain[i]

		fmt.Fprintf(&sb, "  [%d] %T: ", len(chain)-1-i, layer)

		if e, ok := layer.(*Error); ok {
			sb.WriteString(e.msg)

			for _, a := range e.attrs {
				fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value.String())
			}
		} else {
			sb.WriteString(layer.Error())
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}
