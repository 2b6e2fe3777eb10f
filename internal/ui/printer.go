package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Printer writes styled output to a terminal. Model responses are
// rendered as markdown when a renderer could be built, raw otherwise.
type Printer struct {
	out      io.Writer
	styles   *Styles
	renderer *glamour.TermRenderer
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, styles *Styles) *Printer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		renderer = nil
	}

	return &Printer{out: out, styles: styles, renderer: renderer}
}

// Markdown renders a model response.
func (p *Printer) Markdown(text string) {
	if p.renderer != nil {
		if rendered, err := p.renderer.Render(text); err == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, text)
}

// Banner prints the startup banner line.
func (p *Printer) Banner(text string) {
	fmt.Fprintln(p.out, p.styles.Banner.Render(text))
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Error.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Info prints an informational line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Info.Render(fmt.Sprintf(format, args...)))
}

// Muted prints a dimmed line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Diff prints a unified diff with per-line highlighting.
func (p *Printer) Diff(diff string) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			fmt.Fprintln(p.out, p.styles.DiffHeader.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(p.out, p.styles.DiffAdded.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(p.out, p.styles.DiffRemoved.Render(line))
		default:
			fmt.Fprintln(p.out, p.styles.DiffContext.Render(line))
		}
	}
}
