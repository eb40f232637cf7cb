package menu

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Clean      key.Binding
	Show       key.Binding
	Journal    key.Binding
	All        key.Binding
	AllCurrent key.Binding
	Reload     key.Binding
	Back       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	Clean:      key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter", "clean")),
	Show:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "show files")),
	Journal:    key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "journal")),
	All:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "clean all")),
	AllCurrent: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "all + current logs")),
	Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Clean, k.Show, k.Journal, k.All, k.AllCurrent, k.Reload, k.Quit}
}
