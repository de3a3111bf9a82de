package tui

import (
	"github.com/charmbracelet/lipgloss"

	"bellalarm/internal/gateway"
	"bellalarm/internal/models"
)

// Styles for the panel, defined using the lipgloss library.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#303030"}).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#A0A0A0", Dark: "#5C5C5C"}).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Width(16).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#A0A0A0"})

	valueStyle = lipgloss.NewStyle().Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#5F87FF")).
			Padding(1, 3)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))

	// bell indicator, one style per bell class
	stoppedBellStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4E4E4E"))
	runningBellStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#5FD75F")).Bold(true)
	stoppingBellStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFAF00"))
	unknownBellStyle  = lipgloss.NewStyle().Padding(0, 1).Faint(true)

	connOpenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	connPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
	connDownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// bellStyle picks the indicator style for a bell class.
func bellStyle(class string) lipgloss.Style {
	switch class {
	case models.BellClassStopped:
		return stoppedBellStyle
	case models.BellClassRunning:
		return runningBellStyle
	case models.BellClassStopping:
		return stoppingBellStyle
	default:
		return unknownBellStyle
	}
}

func connStyle(s gateway.State) lipgloss.Style {
	switch s {
	case gateway.Open:
		return connOpenStyle
	case gateway.Connecting:
		return connPendingStyle
	default:
		return connDownStyle
	}
}
