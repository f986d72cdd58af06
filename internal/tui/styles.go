package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorGreen  = lipgloss.Color("2")
	colorYellow = lipgloss.Color("3")
	colorRed    = lipgloss.Color("1")
	colorGray   = lipgloss.Color("8")
	colorWhite  = lipgloss.Color("15")
	colorCyan   = lipgloss.Color("6")
)

// Layout styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingTop(1)

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dirtyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	cleanStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	stderrStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	portOwnedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	portUnknownStyle = lipgloss.NewStyle().
				Foreground(colorYellow)
)
