//go:build !linux

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// xHotkey forwards presses of the system-registered shortcut. A press that
// arrives while the previous one is still unread is dropped, so a held key
// cannot queue up several play toggles.
type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}

	mu   sync.Mutex
	done chan struct{}
}

func New() Hotkey {
	return &xHotkey{
		hk:      hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *xHotkey) Register() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != nil {
		return nil
	}
	if err := h.hk.Register(); err != nil {
		return err
	}
	h.done = make(chan struct{})
	go forward(h.hk.Keydown(), h.keydown, h.done)
	go forward(h.hk.Keyup(), h.keyup, h.done)
	return nil
}

func forward[T any](in <-chan T, out chan struct{}, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-in:
			send(out)
		}
	}
}

func (h *xHotkey) Unregister() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done == nil {
		return
	}
	close(h.done)
	h.done = nil
	h.hk.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *xHotkey) Keyup() <-chan struct{}   { return h.keyup }

// Diagnose reports whether the shortcut can be grabbed, releasing it again.
func Diagnose() (string, error) {
	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace)
	if err := hk.Register(); err != nil {
		return "", fmt.Errorf("%s is taken or not permitted: %w", Combo, err)
	}
	hk.Unregister()
	return Combo + " can be registered", nil
}
