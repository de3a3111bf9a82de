package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the panel.
type KeyMap struct {
	Motor     key.Binding
	Alarm     key.Binding
	SetTime   key.Binding
	Submit    key.Binding
	Close     key.Binding
	Quit      key.Binding
	Interrupt key.Binding
}

// DefaultKeyMap returns a KeyMap with default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Motor: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle motor"),
		),
		Alarm: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle alarm"),
		),
		SetTime: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "set alarm time"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit time"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		// works while the dialog owns the keyboard
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Motor, k.Alarm, k.SetTime, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Motor, k.Alarm, k.SetTime},
		{k.Submit, k.Close, k.Quit},
	}
}

// dialogHelp is shown inside the set-time dialog.
func (k KeyMap) dialogHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Close, k.Interrupt}
}
