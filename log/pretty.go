package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette colors the parts of a pretty record. The styles render plain text
// when the output is not a terminal.
type palette struct {
	key, text, number, truth, falsity, duration, when, null lipgloss.Style
}

func newPalette(w io.Writer) palette {
	re := lipgloss.NewRenderer(w)
	fg := func(color string) lipgloss.Style {
		return re.NewStyle().Foreground(lipgloss.Color(color))
	}

	return palette{
		key:      fg("8"),
		text:     fg("6"),
		number:   fg("3"),
		truth:    fg("2"),
		falsity:  fg("1"),
		duration: fg("5"),
		when:     fg("4"),
		null:     fg("8"),
	}
}

func (p palette) level(l slog.Level) string {
	name := strings.ToUpper(Level(l).String())

	switch {
	case l >= slog.LevelError:
		return p.falsity.Render(name)
	case l >= slog.LevelWarn:
		return p.number.Render(name)
	case l >= slog.LevelInfo:
		return p.truth.Render(name)
	default:
		return p.when.Render(name)
	}
}

func (p palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.text.Render(v.String())
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return p.number.Render(v.String())
	case slog.KindBool:
		if v.Bool() {
			return p.truth.Render("true")
		}

		return p.falsity.Render("false")
	case slog.KindDuration:
		return p.duration.Render(v.Duration().String())
	case slog.KindTime:
		return p.when.Render(v.Time().String())
	}

	switch a := v.Any().(type) {
	case slog.Level:
		return p.level(a)
	case nil:
		return p.null.Render("null")
	}

	return p.text.Render(v.String())
}

// prettyHandler writes colored records, either as one line of key=value
// pairs or as an indented JSON-like block. Values are unquoted and groups
// are flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	block  bool
	mu     *sync.Mutex
	w      io.Writer
	paint  palette
	groups []string
	attrs  []slog.Attr
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return newPrettyHandler(w, opts, false)
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return newPrettyHandler(w, opts, true)
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, block bool) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		block: block,
		mu:    &sync.Mutex{},
		w:     w,
		paint: newPalette(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}

	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		// the time layout is applied by ReplaceAttr
		a := slog.Time(slog.TimeKey, r.Time)
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.qualify(a))

		return true
	})

	var flat []slog.Attr
	for _, a := range fields {
		flat = flatten(flat, a)
	}

	var buf bytes.Buffer

	if h.block {
		buf.WriteString("{\n")

		for i, a := range flat {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  " + h.paint.key.Render(a.Key) + ": " + h.paint.value(a.Value))
		}

		buf.WriteString("\n}\n")
	} else {
		for i, a := range flat {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(h.paint.key.Render(a.Key) + "=" + h.paint.value(a.Value))
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = slices.Clone(h.attrs)

	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}

	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &next
}

// qualify prefixes the attribute key with any open groups.
func (h *prettyHandler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return a
	}

	a.Key = strings.Join(h.groups, ".") + "." + a.Key

	return a
}

// flatten appends a to out, expanding groups (including those produced by
// [slog.LogValuer]) into dotted keys.
func flatten(out []slog.Attr, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		return append(out, a)
	}

	for _, g := range a.Value.Group() {
		if a.Key != "" {
			g.Key = a.Key + "." + g.Key
		}

		out = flatten(out, g)
	}

	return out
}
