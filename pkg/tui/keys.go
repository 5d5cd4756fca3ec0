package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Mint    key.Binding
	Up      key.Binding
	Down    key.Binding
	Buy     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Mint:    key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "mint tier")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev listing")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next listing")),
		Buy:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "buy listing")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mint, k.Up, k.Down, k.Buy, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
