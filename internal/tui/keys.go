package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Day   key.Binding
	Week  key.Binding
	Month key.Binding
	Next  key.Binding
	Prev  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Day, k.Week, k.Month, k.Next, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Day, k.Week, k.Month}, {k.Prev, k.Next, k.Quit}}
}

var defaultKeys = keyMap{
	Day:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "day")),
	Week:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "week")),
	Month: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month")),
	Next:  key.NewBinding(key.WithKeys("right", "tab", "l"), key.WithHelp("→/tab", "next timeframe")),
	Prev:  key.NewBinding(key.WithKeys("left", "shift+tab", "h"), key.WithHelp("←", "previous timeframe")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}
