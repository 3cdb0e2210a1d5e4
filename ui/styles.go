package ui

import "github.com/charmbracelet/lipgloss"

const (
	// SetupTagline is shown above the setup form.
	SetupTagline = "Enter your list, set your pace, and start testing!"
	// TestTagline is shown while a test is running.
	TestTagline = "You've got this! Stay focused and do your best!"

	ellipsis = "…"
)

var (
	purple  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	green   = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"}
	red     = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	gray    = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(purple).
			Padding(0, 1).
			Bold(true)

	taglineStyle  = lipgloss.NewStyle().Foreground(gray).Italic(true)
	progressStyle = lipgloss.NewStyle().Bold(true)
	clockStyle    = lipgloss.NewStyle().Foreground(purple).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(green)
	errorStyle    = lipgloss.NewStyle().Foreground(red)
	statusStyle   = lipgloss.NewStyle().Foreground(green)
	dimStyle      = lipgloss.NewStyle().Foreground(gray)

	contextStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(midGray).
			Padding(0, 1)

	resultTitleStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	appStyle         = lipgloss.NewStyle().Padding(1, 2)
)
