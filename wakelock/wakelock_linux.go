//go:build linux

package wakelock

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	screenSaverIface = "org.freedesktop.ScreenSaver"
)

// screenSaver uses the freedesktop ScreenSaver session-bus API, which
// GNOME, KDE and most other desktops implement.
type screenSaver struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	cookie uint32
	held   bool
}

func New() Inhibitor { return &screenSaver{} }

func (s *screenSaver) object() (dbus.BusObject, error) {
	if s.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return nil, fmt.Errorf("%w: session bus: %v", ErrUnsupported, err)
		}
		s.conn = conn
	}
	return s.conn.Object(screenSaverDest, screenSaverPath), nil
}

func (s *screenSaver) Inhibit(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil
	}
	obj, err := s.object()
	if err != nil {
		return err
	}
	var cookie uint32
	if err := obj.Call(screenSaverIface+".Inhibit", 0, "hocus", reason).Store(&cookie); err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
			return fmt.Errorf("%w: %s not running", ErrUnsupported, screenSaverDest)
		}
		return fmt.Errorf("screensaver inhibit: %w", err)
	}
	s.cookie = cookie
	s.held = true
	return nil
}

func (s *screenSaver) Uninhibit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return nil
	}
	s.held = false
	obj, err := s.object()
	if err != nil {
		return err
	}
	if err := obj.Call(screenSaverIface+".UnInhibit", 0, s.cookie).Err; err != nil {
		return fmt.Errorf("screensaver uninhibit: %w", err)
	}
	return nil
}
