package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#DC2626")
	ColorCyan    = lipgloss.Color("#0891B2")
	ColorPink    = lipgloss.Color("#DB2777")
	ColorYellow  = lipgloss.Color("#EAB308")
	ColorText    = lipgloss.Color("#F8FAFC")
	ColorMuted   = lipgloss.Color("#64748B")
	ColorDimGray = lipgloss.Color("#334155")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPink).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	PlayedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	UnplayedStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	RecordingStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	PausedStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPink).
			Padding(0, 1)
)
