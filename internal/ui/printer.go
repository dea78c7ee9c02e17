// Package ui prints the installer's status lines.
//
// Output is semantic (Info, OK, Warning, Error) rather than visual. Colours
// come from lipgloss and are only applied when the target is a terminal and
// NO_COLOR is unset; otherwise the lines are plain text, which keeps test
// output and redirected logs free of escape codes.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Status tags printed in front of each message.
const (
	tagInfo    = "[INFO]"
	tagOK      = "[ OK ]"
	tagWarning = "[WARN]"
	tagError   = "[ERROR]"
	tagVerbose = "[verbose]"
)

// Printer writes status lines to an output stream and errors/verbose traces
// to an error stream.
type Printer struct {
	out     io.Writer
	err     io.Writer
	verbose bool

	// Each stream has its own renderer: stdout may be a terminal while
	// stderr is redirected to a file, or the other way round.
	outRenderer *lipgloss.Renderer
	errRenderer *lipgloss.Renderer

	info     lipgloss.Style
	ok       lipgloss.Style
	warning  lipgloss.Style
	errStyle lipgloss.Style
	muted    lipgloss.Style
}

// Option configures a Printer.
type Option func(*Printer)

// WithVerbose enables Verbose output.
func WithVerbose(verbose bool) Option {
	return func(p *Printer) {
		p.verbose = verbose
	}
}

// WithColor forces colour on or off on both streams regardless of
// terminal detection.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		setProfile(p.outRenderer, enabled)
		setProfile(p.errRenderer, enabled)
	}
}

// NewPrinter creates a Printer writing to out and err.
//
// Colour is decided per stream: enabled when that stream is a terminal and
// NO_COLOR is not set.
func NewPrinter(out, err io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:         out,
		err:         err,
		outRenderer: lipgloss.NewRenderer(out),
		errRenderer: lipgloss.NewRenderer(err),
	}

	setProfile(p.outRenderer, colorEnabled(out))
	setProfile(p.errRenderer, colorEnabled(err))

	for _, opt := range opts {
		opt(p)
	}

	p.info = p.outRenderer.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	p.ok = p.outRenderer.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	p.warning = p.errRenderer.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	p.errStyle = p.errRenderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	p.muted = p.errRenderer.NewStyle().Foreground(lipgloss.Color("245"))
	return p
}

func setProfile(r *lipgloss.Renderer, color bool) {
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
}

// colorEnabled reports whether w is a terminal that should receive colour.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}

// isTerminal is a variable so tests can fake a terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Info reports a step that is about to happen.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, p.info, tagInfo, format, args...)
}

// OK reports a completed step.
func (p *Printer) OK(format string, args ...any) {
	p.line(p.out, p.ok, tagOK, format, args...)
}

// Warning reports something the user should notice but that does not
// fail the run.
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.err, p.warning, tagWarning, format, args...)
}

// Error reports a failure.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.err, p.errStyle, tagError, format, args...)
}

// Verbose prints a trace line to the error stream when verbose mode is on.
func (p *Printer) Verbose(format string, args ...any) {
	if !p.verbose {
		return
	}
	p.line(p.err, p.muted, tagVerbose, format, args...)
}

// IsVerbose reports whether verbose output is enabled.
func (p *Printer) IsVerbose() bool {
	return p.verbose
}

func (p *Printer) line(w io.Writer, style lipgloss.Style, tag, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", style.Render(tag), fmt.Sprintf(format, args...))
}
