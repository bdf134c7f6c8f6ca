package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the confirmation prompt bindings
type keyMap struct {
	Accept key.Binding
	Skip   key.Binding
	Abort  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Accept: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "run"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n", "tab", "down", "j"),
			key.WithHelp("n/↓", "next"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc/q", "abort"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Skip, k.Abort}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
