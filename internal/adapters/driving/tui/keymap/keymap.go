// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Submit sends the typed question or path.
	Submit key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// Toggle flips the exclusion of the selected document.
	Toggle key.Binding

	// ExcludeAll excludes every listed document.
	ExcludeAll key.Binding

	// IncludeAll clears all exclusions.
	IncludeAll key.Binding

	// Refresh reloads the document registry.
	Refresh key.Binding

	// NextCitation moves to the next resolved citation.
	NextCitation key.Binding

	// PrevCitation moves to the previous resolved citation.
	PrevCitation key.Binding

	// Open shows the answer behind the selected citation.
	Open key.Binding

	// Focus switches between the input and the history.
	Focus key.Binding

	// ClearHistory empties the conversation history.
	ClearHistory key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		ExcludeAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "exclude all"),
		),
		IncludeAll: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "include all"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextCitation: key.NewBinding(
			key.WithKeys("tab", "n"),
			key.WithHelp("tab", "next citation"),
		),
		PrevCitation: key.NewBinding(
			key.WithKeys("shift+tab", "p"),
			key.WithHelp("shift+tab", "prev citation"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open citation"),
		),
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "new question"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear history"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ChatHelp returns keybindings for browsing the conversation.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Focus, k.NextCitation, k.Open, k.Back}
}

// ChecklistHelp returns keybindings for the exclusion checklist.
func (k *KeyMap) ChecklistHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.ExcludeAll, k.IncludeAll, k.Refresh, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Submit, k.Focus, k.ClearHistory, k.Back},
		{k.NextCitation, k.PrevCitation, k.Open},
		{k.Toggle, k.ExcludeAll, k.IncludeAll, k.Refresh},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
