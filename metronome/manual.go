package metronome

import (
	"sync"
	"time"
)

// ManualTicker is a Ticker that only ticks when told to.
type ManualTicker struct {
	Interval time.Duration

	c        chan time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func NewManualTicker(d time.Duration) *ManualTicker {
	return &ManualTicker{Interval: d, c: make(chan time.Time), done: make(chan struct{})}
}

func (m *ManualTicker) C() <-chan time.Time { return m.c }

func (m *ManualTicker) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Tick hands one tick to the receiver. It returns false without ticking if
// the ticker has been stopped.
func (m *ManualTicker) Tick() bool {
	select {
	case <-m.done:
		return false
	default:
	}
	select {
	case m.c <- time.Now():
		return true
	case <-m.done:
		return false
	}
}

func (m *ManualTicker) Stopped() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// ManualTickers is a ticker factory that keeps every ticker it creates.
type ManualTickers struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

func (f *ManualTickers) New(d time.Duration) Ticker {
	t := NewManualTicker(d)
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

// Last returns the most recently created ticker, or nil.
func (f *ManualTickers) Last() *ManualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

func (f *ManualTickers) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}
