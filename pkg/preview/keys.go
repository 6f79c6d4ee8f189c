package preview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Back    key.Binding
	Forward key.Binding
	First   key.Binding
	Last    key.Binding
	Play    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev slice")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next slice")),
		Back:    key.NewBinding(key.WithKeys("down", "pgdown", "j"), key.WithHelp("↓/pgdn", "back 10")),
		Forward: key.NewBinding(key.WithKeys("up", "pgup", "k"), key.WithHelp("↑/pgup", "forward 10")),
		First:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first")),
		Last:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last")),
		Play:    key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "play/pause")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Play, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Back, k.Forward},
		{k.First, k.Last, k.Play},
		{k.Help, k.Quit},
	}
}
