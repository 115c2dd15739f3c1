package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"nmwifi/internal/panel"
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Back       key.Binding
	ToggleWifi key.Binding
	Scan       key.Binding
	Forget     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Scan, k.Forget, k.ToggleWifi, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Scan, k.Forget, k.ToggleWifi},
		{k.Help, k.Quit},
	}
}

var defaultKeyBindings = keyMap{
	Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
	Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	ToggleWifi: key.NewBinding(key.WithKeys("o", "O"), key.WithHelp("o", "wifi on/off")),
	Scan:       key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "scan")),
	Forget:     key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "forget")),
	Help:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "Q"), key.WithHelp("q", "quit")),
}

// translate maps a terminal key press onto a panel key. Letters pass
// through as runes; the state machine decides what they mean.
func (k keyMap) translate(msg tea.KeyMsg) panel.Key {
	switch {
	case key.Matches(msg, k.Up):
		return panel.Key{Kind: panel.KeyUp}
	case key.Matches(msg, k.Down):
		return panel.Key{Kind: panel.KeyDown}
	case key.Matches(msg, k.Select):
		return panel.Key{Kind: panel.KeyEnter}
	case key.Matches(msg, k.Back):
		return panel.Key{Kind: panel.KeyEscape}
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		return panel.Rune(msg.Runes[0])
	}
	return panel.Key{Kind: panel.KeyOther}
}
