// Package keymap defines keybindings for the job monitor.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the monitor responds to.
type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Refresh key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open result"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// JobsHelp returns the hints shown on the job list.
func (k *KeyMap) JobsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Refresh, k.Quit}
}

// ResultHelp returns the hints shown on a result.
func (k *KeyMap) ResultHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back, k.Quit}
}
