// Package hotkey listens for the global Ctrl+Shift+Space shortcut.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// Combo is the human-readable shortcut, shown in help text.
const Combo = "Ctrl+Shift+Space"
