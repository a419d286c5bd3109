package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/ardnew/j2env/log"
)

type status string

const (
	statusSuccess status = "success"
	statusFailed  status = "failed"
	statusSkipped status = "skipped"
)

// Column widths of the template and output names.
const (
	templateWidth = 35
	outputWidth   = 25
	statusWidth   = 7
)

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type palette struct {
	label, value, success, failure, skipped lipgloss.Style
}

func newPalette(w io.Writer) palette {
	re := lipgloss.NewRenderer(w)

	return palette{
		label:   re.NewStyle().Foreground(lipgloss.Color("2")),
		value:   re.NewStyle().Foreground(lipgloss.Color("7")),
		success: re.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		failure: re.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		skipped: re.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// reporter prints one line per rendered template, grouped by directory.
// Runs of identical lines are collapsed.
type reporter struct {
	out   io.Writer
	lines *log.Repeat
	style palette
	color bool
	dir   string
}

func newReporter(stdout io.Writer, color bool) *reporter {
	return &reporter{
		out:   stdout,
		lines: log.NewRepeat(stdout),
		style: newPalette(stdout),
		color: color,
	}
}

func (r *reporter) stdout() io.Writer { return r.out }

func (r *reporter) paint(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}

	return s.Render(text)
}

func (r *reporter) status(s status, width int) string {
	text := fmt.Sprintf("%-*s", width, s)

	switch s {
	case statusSuccess:
		return r.paint(r.style.success, text)
	case statusFailed:
		return r.paint(r.style.failure, text)
	default:
		return r.paint(r.style.skipped, text)
	}
}

func (r *reporter) write(line string) {
	_, _ = r.lines.WriteString(line)
}

// result reports the outcome of one template. A non-nil err is the reason
// writing failed.
func (r *reporter) result(res result, written status, err error) {
	if dir := filepath.Dir(res.template); dir != r.dir {
		r.write("\n" + r.paint(r.style.label, "In: ") + r.paint(r.style.value, dir) + "\n")
		r.dir = dir
	}

	rendered := statusSuccess
	if res.failed() {
		rendered = statusFailed
	}

	var sb strings.Builder

	sb.WriteString("    ")
	sb.WriteString(r.paint(r.style.label, "rendering: "))
	sb.WriteString(r.paint(r.style.value, fmt.Sprintf("%-*s", templateWidth, filepath.Base(res.template))))
	sb.WriteString(r.paint(r.style.label, " => "))
	sb.WriteString(r.status(rendered, statusWidth))
	sb.WriteString(r.paint(r.style.label, " => writing: "))
	sb.WriteString(r.paint(r.style.value, fmt.Sprintf("%-*s", outputWidth, filepath.Base(res.output))))
	sb.WriteString(r.paint(r.style.label, " => "))
	sb.WriteString(r.status(written, 0))

	if err != nil {
		sb.WriteString(" (" + err.Error() + ")")
	}

	sb.WriteByte('\n')

	r.write(sb.String())
}

// command reports the outcome of the post-render command.
func (r *reporter) command(argv []string, err error) {
	s := statusSuccess
	if err != nil {
		s = statusFailed
	}

	line := "\n" + r.paint(r.style.label, "running: ") +
		r.paint(r.style.value, strings.Join(argv, " ")) +
		r.paint(r.style.label, " => ") + r.status(s, 0)

	if err != nil {
		line += " (" + err.Error() + ")"
	}

	r.write(line + "\n")
}
