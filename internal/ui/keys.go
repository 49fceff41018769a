package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Submit   key.Binding
	Back     key.Binding
	Prev     key.Binding
	Next     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

var Keys = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Prev:     key.NewBinding(key.WithKeys("up"), key.WithHelp("up", "previous command")),
	Next:     key.NewBinding(key.WithKeys("down"), key.WithHelp("down", "next command")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
}
