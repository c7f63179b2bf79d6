package tui

import "github.com/charmbracelet/bubbles/key"

// VolumeStep is how far one volume key press moves the slider
const VolumeStep = 5

// KeyMap holds the board's non-pad bindings. Every other single
// character key is offered to the pads.
type KeyMap struct {
	Power      key.Binding
	Bank       key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap avoids letters so all of them stay free for pads
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Power: key.NewBinding(
			key.WithKeys("ctrl+p", "1"),
			key.WithHelp("1", "power"),
		),
		Bank: key.NewBinding(
			key.WithKeys("ctrl+b", "2"),
			key.WithHelp("2", "bank"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("up", "right", "+", "="),
			key.WithHelp("↑/+", "vol up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("down", "left", "-", "_"),
			key.WithHelp("↓/-", "vol down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.Bank, k.VolumeUp, k.VolumeDown, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	pads := key.NewBinding(
		key.WithKeys("q", "w", "e", "a", "s", "d", "z", "x", "c"),
		key.WithHelp("qweasdzxc", "play pad"),
	)
	return [][]key.Binding{
		{pads, k.Power, k.Bank},
		{k.VolumeUp, k.VolumeDown},
		{k.Help, k.Quit},
	}
}
