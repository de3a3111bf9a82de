package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bellalarm/internal/panel"
)

const (
	checkedBox   = "[x]"
	uncheckedBox = "[ ]"
)

// View renders the panel, or the set-time dialog centered over the screen
// while it is open.
func (m Model) View() string {
	if m.ctrl.Panel().ModalOpen() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderDialog())
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Bell Alarm Clock · " + m.device))
	b.WriteString("\n")
	b.WriteString(m.renderConnection())
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.renderPanel()))
	b.WriteString("\n")
	if m.lastErr != "" {
		b.WriteString(errorStyle.Render("send failed: " + m.lastErr))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m Model) renderConnection() string {
	return connStyle(m.conn).Render("● " + m.conn.String())
}

func (m Model) renderPanel() string {
	p := m.ctrl.Panel()
	alarmTime := p.AlarmTime()
	if alarmTime == "" {
		alarmTime = panel.Placeholder
	}
	class := p.BellClass()
	bell := bellStyle(class).Render("🔔 " + bellLabel(class))

	rows := []string{
		row("Motor", box(p.Motor())),
		row("Alarm", box(p.Alarm())),
		row("Alarm time", alarmTime),
		row("Remaining (s)", p.RemainingTime()),
		row("Current time", p.CurrentTime()),
		row("Bell", bell),
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderDialog() string {
	body := fmt.Sprintf("Set alarm time\n\n%s %s\n\n%s",
		labelStyle.Width(6).Render("Time"),
		m.input.View(),
		m.help.ShortHelpView(m.keys.dialogHelp()),
	)
	return dialogStyle.Render(body)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func box(on bool) string {
	if on {
		return checkedBox
	}
	return uncheckedBox
}

func bellLabel(class string) string {
	if class == "" {
		return "unknown"
	}
	return strings.TrimSuffix(class, "_bell")
}
