package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#EF4444")
	colorWhite   = lipgloss.Color("#FFFFFF")

	styleApp = lipgloss.NewStyle().
			Padding(1, 2)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	styleHint = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleSelected = lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(colorWhite).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)
)
