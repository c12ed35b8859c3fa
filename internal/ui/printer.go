package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// progressWidth is the width of the chapter progress bar in cells.
const progressWidth = 30

// Printer writes styled status lines.
type Printer struct {
	out    io.Writer
	styles Styles
	bar    progress.Model
}

// NewPrinter creates a Printer for out. Colors are only used when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:    out,
		styles: NewStyles(lipgloss.NewRenderer(out)),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(progressWidth),
		),
	}
}

// Title prints a heading line.
func (p *Printer) Title(format string, args ...any) {
	p.line(p.styles.Title, format, args...)
}

// Info prints a plain status line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.styles.InfoText, format, args...)
}

// Success prints a status line for a completed step.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.styles.SuccessText, "✓ "+format, args...)
}

// Warn prints a status line for a condition the user must act on.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.styles.WarnText, "⚠ "+format, args...)
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.styles.ErrorText, "✗ "+format, args...)
}

// List prints items as a numbered list.
func (p *Printer) List(items []string) {
	for i, item := range items {
		fmt.Fprintln(p.out, p.styles.ListItem.Render(fmt.Sprintf("%d. %s", i+1, p.styles.Chapter.Render(item))))
	}
}

// Table prints rows with left-aligned columns.
func (p *Printer) Table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	format := func(cells []string) string {
		padded := make([]string, len(cells))
		for i, c := range cells {
			if i < len(widths) {
				c += strings.Repeat(" ", widths[i]-lipgloss.Width(c))
			}
			padded[i] = c
		}
		return strings.TrimRight(strings.Join(padded, "  "), " ")
	}

	fmt.Fprintln(p.out, p.styles.Title.Render(format(header)))
	for _, row := range rows {
		fmt.Fprintln(p.out, format(row))
	}
}

// Progress prints a progress bar line for done of total steps.
func (p *Printer) Progress(done, total int, label string) {
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	fmt.Fprintf(p.out, "%s %d/%d %s\n", p.bar.ViewAs(pct), done, total, p.styles.MutedText.Render(label))
}

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.out, style.Render(fmt.Sprintf(format, args...)))
}
