// Package tui is the terminal front-end of the bell control panel.
//
// The Bubble Tea update loop is the single place where device statuses,
// connection changes, refresh ticks and key/mouse input touch the panel, so
// the controller needs no locking.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bellalarm/internal/controller"
	"bellalarm/internal/gateway"
	"bellalarm/internal/models"
	"bellalarm/internal/panel"
)

// StatusMsg carries a device status into the update loop.
type StatusMsg models.DeviceStatus

// ConnStateMsg carries a gateway lifecycle transition into the update loop.
type ConnStateMsg gateway.State

// refreshMsg fires the countdown and clock refresh.
type refreshMsg time.Time

// Model is the Bubble Tea model of the panel.
type Model struct {
	ctrl     *controller.Controller
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	device   string
	conn     gateway.State
	interval time.Duration
	lastErr  string

	width  int
	height int
}

// New builds the panel model. device is shown in the header.
func New(ctrl *controller.Controller, device string, interval time.Duration) Model {
	if interval <= 0 {
		interval = controller.DefaultRefreshInterval
	}
	in := textinput.New()
	in.Placeholder = "HH:MM"
	in.CharLimit = 5
	in.Width = 5
	in.Prompt = ""

	return Model{
		ctrl:     ctrl,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    in,
		device:   device,
		conn:     gateway.Disconnected,
		interval: interval,
	}
}

// Init refreshes once right away; afterwards refreshes are self-scheduled.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg(time.Now()) }
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Update handles one event.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case StatusMsg:
		m.ctrl.HandleStatus(models.DeviceStatus(msg))

	case ConnStateMsg:
		m.conn = gateway.State(msg)

	case refreshMsg:
		m.ctrl.Refresh()
		cmd = m.scheduleRefresh()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.ctrl.Click(msg.X, msg.Y)
			if !m.ctrl.Panel().ModalOpen() {
				m.input.Blur()
			}
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Interrupt) {
			return m, tea.Quit
		}
		if m.ctrl.Panel().ModalOpen() {
			cmd = m.updateDialog(msg)
		} else if m.updateMain(msg) {
			return m, tea.Quit
		}
	}

	m.syncDialogBounds()
	return m, cmd
}

// updateMain handles keys while the dialog is closed. It reports whether
// the program should quit.
func (m *Model) updateMain(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return true
	case key.Matches(msg, m.keys.Motor):
		m.record(m.ctrl.ToggleMotor())
	case key.Matches(msg, m.keys.Alarm):
		m.record(m.ctrl.ToggleAlarm())
	case key.Matches(msg, m.keys.SetTime):
		m.ctrl.OpenTimeDialog()
		m.input.SetValue(m.ctrl.Panel().TimeInput())
		m.input.CursorEnd()
		m.input.Focus()
	}
	return false
}

func (m *Model) updateDialog(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.record(m.ctrl.ConfirmTime(m.input.Value()))
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.Close):
		m.ctrl.CloseTimeDialog()
		m.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// record keeps the last send failure for the status line.
func (m *Model) record(err error) {
	if err != nil {
		m.lastErr = err.Error()
		return
	}
	m.lastErr = ""
}

// syncDialogBounds tells the panel where the centered dialog is drawn so
// clicks can be classified as inside or outside it.
func (m *Model) syncDialogBounds() {
	dialog := m.renderDialog()
	w, h := lipgloss.Width(dialog), lipgloss.Height(dialog)
	m.ctrl.Panel().SetModalBounds(panel.Rect{
		X: max(m.width-w, 0) / 2,
		Y: max(m.height-h, 0) / 2,
		W: w,
		H: h,
	})
}
