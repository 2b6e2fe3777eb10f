// Package ui renders assistant output and gates destructive writes
// behind interactive confirmation.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors for the UI theme
var (
	ColorPrimary = lipgloss.Color("#A78BFA") // Soft Purple (Lavender 400)
	ColorSuccess = lipgloss.Color("#059669") // Emerald 600
	ColorWarning = lipgloss.Color("#D97706") // Amber 600
	ColorError   = lipgloss.Color("#DC2626") // Red 600
	ColorMuted   = lipgloss.Color("#9CA3AF") // Gray 400
	ColorText    = lipgloss.Color("#F1F5F9") // Slate 100
	ColorAccent  = lipgloss.Color("#F472B6") // Pink 400
	ColorInfo    = lipgloss.Color("#2DD4BF") // Teal 400
	ColorDim     = lipgloss.Color("#6B7280") // Gray 500
)

// Styles holds the prebuilt lipgloss styles shared by the printer and
// the confirmation prompt.
type Styles struct {
	Banner  lipgloss.Style
	Prompt  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffAdded   lipgloss.Style
	DiffRemoved lipgloss.Style
	DiffContext lipgloss.Style
}

// NewStyles builds the default style set.
func NewStyles() *Styles {
	return &Styles{
		Banner:  lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true),
		Prompt:  lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
		Success: lipgloss.NewStyle().Foreground(ColorSuccess),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(ColorInfo),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),

		DiffHeader:  lipgloss.NewStyle().Foreground(ColorInfo).Bold(true),
		DiffAdded:   lipgloss.NewStyle().Foreground(ColorSuccess),
		DiffRemoved: lipgloss.NewStyle().Foreground(ColorError),
		DiffContext: lipgloss.NewStyle().Foreground(ColorDim),
	}
}
