package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Play    key.Binding
	Back    key.Binding
	Forward key.Binding
	Rate    key.Binding
	Record  key.Binding
	Pause   key.Binding
	Cancel  key.Binding
	Search  key.Binding
	Rename  key.Binding
	Delete  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Escape  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Play, k.Search, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Play, k.Back, k.Forward, k.Rate},
		{k.Record, k.Pause, k.Cancel},
		{k.Search, k.Rename, k.Delete, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Play: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play/pause"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "seek back"),
	),
	Forward: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "seek forward"),
	),
	Rate: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "speed"),
	),
	Record: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "record/stop"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause/resume"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "discard recording"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Rename: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter", "y"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
	),
}
