package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the map view bindings.
type KeyMap struct {
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Reset    key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Next     key.Binding
	Prev     key.Binding
	Open     key.Binding
	Close    key.Binding
	Center   key.Binding
	Tags     key.Binding
	ClearTag key.Binding
	Restart  key.Binding
	Stop     key.Binding
	Copy     key.Binding
	Export   key.Binding
	Scroll   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Reset:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset view")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous node")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Center:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "centre")),
		Tags:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "filter tag")),
		ClearTag: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "clear filter")),
		Restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-layout")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "freeze")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export svg")),
		Scroll:   key.NewBinding(key.WithKeys("pgdown", "pgup"), key.WithHelp("pgup/pgdn", "scroll detail")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Open, k.ZoomIn, k.ZoomOut, k.Tags, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Center},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Next, k.Prev, k.Open, k.Close},
		{k.Tags, k.ClearTag, k.Restart, k.Stop},
		{k.Copy, k.Export, k.Scroll, k.Help, k.Quit},
	}
}
