// Package ui renders status output for the command-line tool.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	TextMuted = lipgloss.Color("#9CA3AF") // Light gray
)

// Styles is the set of styles bound to one output renderer.
type Styles struct {
	Title       lipgloss.Style
	InfoText    lipgloss.Style
	SuccessText lipgloss.Style
	WarnText    lipgloss.Style
	ErrorText   lipgloss.Style
	MutedText   lipgloss.Style
	ListItem    lipgloss.Style
	Chapter     lipgloss.Style
}

// NewStyles builds styles for r. The renderer decides whether colors are emitted.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(Primary),
		InfoText: r.NewStyle().
			Foreground(TextMuted),
		SuccessText: r.NewStyle().
			Foreground(Secondary),
		WarnText: r.NewStyle().
			Foreground(Accent),
		ErrorText: r.NewStyle().
			Foreground(Error).
			Bold(true),
		MutedText: r.NewStyle().
			Foreground(TextMuted).
			Italic(true),
		ListItem: r.NewStyle().
			PaddingLeft(2),
		Chapter: r.NewStyle().
			Foreground(Secondary).
			Bold(true),
	}
}
