// Package wakelock keeps the display awake while the metronome is playing.
package wakelock

import (
	"errors"
	"sync"
	"sync/atomic"

	"hocus/log"
)

var ErrUnsupported = errors.New("wake lock not supported on this platform")

// Inhibitor is a platform screen-sleep inhibitor holding at most one lock.
type Inhibitor interface {
	Inhibit(reason string) error
	Uninhibit() error
}

// Guard owns the process-wide wake lock. Acquire and Release only record the
// wanted state and return immediately; a worker goroutine applies it in order,
// so a slow platform call never blocks the caller. Failures are logged and
// swallowed.
type Guard struct {
	inh    Inhibitor
	reason string

	mu     sync.Mutex
	want   bool
	closed bool

	held      atomic.Bool
	warned    atomic.Bool
	wake      chan struct{}
	flush     chan chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewGuard starts the worker. A nil inhibitor behaves like an unsupported platform.
func NewGuard(inh Inhibitor, reason string) *Guard {
	if inh == nil {
		inh = unsupported{}
	}
	g := &Guard{
		inh:    inh,
		reason: reason,
		wake:   make(chan struct{}, 1),
		flush:  make(chan chan struct{}),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go g.run()
	return g
}

// Acquire requests the lock. No-op if already requested.
func (g *Guard) Acquire() { g.set(true) }

// Release drops the lock. No-op if not requested.
func (g *Guard) Release() { g.set(false) }

// Held reports whether the platform lock is currently held.
func (g *Guard) Held() bool { return g.held.Load() }

// Sync blocks until the worker has applied the most recent request.
func (g *Guard) Sync() {
	reply := make(chan struct{})
	select {
	case g.flush <- reply:
		<-reply
	case <-g.done:
	}
}

// Close releases the lock if held and stops the worker.
func (g *Guard) Close() {
	g.closeOnce.Do(func() {
		g.mu.Lock()
		g.closed = true
		g.want = false
		g.mu.Unlock()
		close(g.quit)
	})
	<-g.done
}

func (g *Guard) set(want bool) {
	g.mu.Lock()
	if g.closed || g.want == want {
		g.mu.Unlock()
		return
	}
	g.want = want
	g.mu.Unlock()

	select {
	case g.wake <- struct{}{}:
	default:
	}
}

func (g *Guard) run() {
	defer close(g.done)
	for {
		select {
		case <-g.wake:
			g.apply()
		case reply := <-g.flush:
			g.apply()
			close(reply)
		case <-g.quit:
			g.apply()
			return
		}
	}
}

// apply moves the held state toward the wanted state. A failed acquire is
// not retried until the next Acquire.
func (g *Guard) apply() {
	g.mu.Lock()
	want := g.want
	g.mu.Unlock()

	if want == g.held.Load() {
		return
	}
	if want {
		if err := g.inh.Inhibit(g.reason); err != nil {
			g.report(err)
			return
		}
		g.held.Store(true)
		log.Debug("wake lock acquired")
		return
	}
	if err := g.inh.Uninhibit(); err != nil {
		log.Warnf("wake lock release: %v", err)
	}
	g.held.Store(false)
	log.Debug("wake lock released")
}

func (g *Guard) report(err error) {
	if errors.Is(err, ErrUnsupported) {
		if g.warned.CompareAndSwap(false, true) {
			log.Warn("wake lock unavailable, display may sleep during playback")
		}
		return
	}
	log.Warnf("wake lock acquire: %v", err)
}

type unsupported struct{}

func (unsupported) Inhibit(string) error { return ErrUnsupported }
func (unsupported) Uninhibit() error     { return nil }

// Disabled returns an inhibitor that never locks, for -nowake.
func Disabled() Inhibitor { return unsupported{} }
