package hotkey

import "time"

// DefaultLongPress separates a tap from a hold.
const DefaultLongPress = 400 * time.Millisecond

// Gestures turns raw key events into taps and holds. A press released
// before longPress is a tap; one still down at longPress is a hold, reported
// as soon as the threshold passes.
type Gestures struct {
	tapCh  chan struct{}
	holdCh chan struct{}
	stop   chan struct{}
}

func NewGestures(hk Hotkey, longPress time.Duration) *Gestures {
	g := &Gestures{
		tapCh:  make(chan struct{}, 1),
		holdCh: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go g.run(hk, longPress)
	return g
}

func (g *Gestures) Tap() <-chan struct{}  { return g.tapCh }
func (g *Gestures) Hold() <-chan struct{} { return g.holdCh }

func (g *Gestures) Close() { close(g.stop) }

func (g *Gestures) run(hk Hotkey, longPress time.Duration) {
	for {
		select {
		case <-hk.Keydown():
		case <-g.stop:
			return
		}

		timer := time.NewTimer(longPress)
		select {
		case <-hk.Keyup():
			timer.Stop()
			send(g.tapCh)
		case <-timer.C:
			send(g.holdCh)
			select {
			case <-hk.Keyup():
			case <-g.stop:
				return
			}
		case <-g.stop:
			timer.Stop()
			return
		}
	}
}

func send(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
