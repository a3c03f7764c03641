package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Enter     key.Binding
	Back      key.Binding
	Reload    key.Binding
	Search    key.Binding
	Filter    key.Binding
	Sort      key.Binding
	Issues    key.Binding
	Reset     key.Binding
	Open      key.Binding
	Results   key.Binding
	Summary   key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	Expand    key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev pane")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "raw json")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Issues:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "issues only")),
	Reset:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset filters")),
	Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open url")),
	Results:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "results")),
	Summary:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "summary")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	NextMatch: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	PrevMatch: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	Expand:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "show full")),
}
