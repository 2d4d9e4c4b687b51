package metronome

import (
	"sync"
	"time"
)

// Scheduler fires a callback once per beat interval.
type Scheduler interface {
	// Start arms the trigger: onBeat runs once immediately, then every
	// interval. A trigger that is already armed is disarmed first.
	Start(interval time.Duration, onBeat func())
	// Stop disarms the trigger. When it returns no onBeat call is running
	// and none will start. Safe to call when stopped. Must not be called
	// from onBeat.
	Stop()
	Armed() bool
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// TickerScheduler drives beats from a coarse periodic ticker. It does not
// correct drift: ticks that arrive while a beat is still rendering are
// dropped by the ticker rather than queued.
type TickerScheduler struct {
	newTicker func(time.Duration) Ticker

	mu     sync.Mutex
	gen    uint64
	stop   chan struct{}
	ticker Ticker

	// fireMu is held for the duration of each onBeat call.
	fireMu sync.Mutex
}

func NewTickerScheduler() *TickerScheduler {
	return NewTickerSchedulerWith(NewTimeTicker)
}

// NewTickerSchedulerWith uses newTicker to create the periodic trigger.
func NewTickerSchedulerWith(newTicker func(time.Duration) Ticker) *TickerScheduler {
	return &TickerScheduler{newTicker: newTicker}
}

func (s *TickerScheduler) Start(interval time.Duration, onBeat func()) {
	s.Stop()

	s.mu.Lock()
	s.gen++
	gen := s.gen
	stop := make(chan struct{})
	t := s.newTicker(interval)
	s.stop = stop
	s.ticker = t
	s.mu.Unlock()

	s.fire(gen, onBeat)
	go s.loop(gen, t, stop, onBeat)
}

func (s *TickerScheduler) loop(gen uint64, t Ticker, stop <-chan struct{}, onBeat func()) {
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			s.fire(gen, onBeat)
		}
	}
}

// fire runs onBeat unless the trigger it belongs to has been disarmed.
func (s *TickerScheduler) fire(gen uint64, onBeat func()) {
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	s.mu.Lock()
	live := s.gen == gen && s.stop != nil
	s.mu.Unlock()
	if live {
		onBeat()
	}
}

func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return
	}
	s.gen++
	close(s.stop)
	s.ticker.Stop()
	s.stop = nil
	s.ticker = nil
	s.mu.Unlock()

	// wait out a beat that was already running
	s.fireMu.Lock()
	s.fireMu.Unlock()
}

func (s *TickerScheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}
