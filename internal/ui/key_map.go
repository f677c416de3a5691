package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the preview.
type keyMap struct {
	pause  key.Binding
	reload key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		pause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.pause, k.reload, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.pause, k.reload, k.quit}}
}
