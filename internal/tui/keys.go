package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the trainer. Practice and document
// bindings only apply on their own screens.
type KeyMap struct {
	Overview key.Binding
	Learn    key.Binding
	Practice key.Binding
	Document key.Binding
	NextMode key.Binding

	// Practice.
	Choose  key.Binding // a-f picks the option with that letter.
	Next    key.Binding
	Review  key.Binding
	Restart key.Binding

	// Document.
	Up            key.Binding
	Down          key.Binding
	Edit          key.Binding
	Toggle        key.Binding
	TemplateBase  key.Binding
	TemplateFacts key.Binding
	Export        key.Binding
	Clear         key.Binding
	Confirm       key.Binding
	Cancel        key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Overview: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "mission control"),
	),
	Learn: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "playbook"),
	),
	Practice: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "simulation"),
	),
	Document: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "incident log"),
	),
	NextMode: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next screen"),
	),
	Choose: key.NewBinding(
		key.WithKeys("a", "b", "c", "d", "e", "f"),
		key.WithHelp("a-f", "answer"),
	),
	Next: key.NewBinding(
		key.WithKeys("n", "enter"),
		key.WithHelp("n", "next scenario"),
	),
	Review: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "review choices"),
	),
	Restart: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "restart"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter", "e"),
		key.WithHelp("enter", "edit"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	TemplateBase: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "baseline template"),
	),
	TemplateFacts: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "minimal facts"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Clear: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear log"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
