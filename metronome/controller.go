package metronome

import (
	"sync"
	"time"

	"hocus/log"
	"hocus/synth"
)

// Renderer plays one beat. RenderBeat must not fail loudly: a beat that
// cannot be played is skipped and reported as false.
type Renderer interface {
	EnsureResumed() error
	RenderBeat(p synth.Profile, volume float64) bool
}

// WakeLock is the process-wide screen wake lock. Acquire and Release must
// be no-ops when the lock is already in the requested state.
type WakeLock interface {
	Acquire()
	Release()
	Close()
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithWakeLock(w WakeLock) Option {
	return func(c *Controller) { c.wake = w }
}

// WithSession sets the initial tempo, volume and sound. Out of range values
// are clamped and an unknown sound falls back to the default.
func WithSession(tempo int, volume float64, sound synth.SoundID) Option {
	return func(c *Controller) {
		c.s.Tempo = ClampTempo(tempo)
		c.s.Volume = ClampVolume(volume)
		if p, err := synth.Lookup(sound); err == nil {
			c.s.Sound = sound
			c.profile = p
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the one playback session. Commands are serialized by opMu;
// mu guards the session and is never held while calling the scheduler, so
// Stop can wait for a running beat that needs mu.
type Controller struct {
	renderer Renderer
	sched    Scheduler
	wake     WakeLock
	now      func() time.Time

	opMu sync.Mutex

	mu        sync.Mutex
	s         Session
	profile   synth.Profile
	observer  func(Session)
	startedAt time.Time
	plays     int
	beats     uint64
	closed    bool
}

func NewController(r Renderer, opts ...Option) *Controller {
	p, _ := synth.Lookup(synth.DefaultSound)
	c := &Controller{
		renderer: r,
		now:      time.Now,
		s: Session{
			Tempo:  DefaultTempo,
			Volume: DefaultVolume,
			Sound:  synth.DefaultSound,
		},
		profile: p,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = NewTickerScheduler()
	}
	return c
}

// OnChange registers fn to receive a snapshot after every beat and every
// state or parameter change. fn runs on the caller's or the scheduler's
// goroutine and must not call back into the controller.
func (c *Controller) OnChange(fn func(Session)) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

func (c *Controller) State() State { return c.Snapshot().State() }

func (c *Controller) TogglePlay() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.Snapshot().Running {
		c.stop()
	} else {
		c.start()
	}
}

func (c *Controller) Play() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.start()
}

func (c *Controller) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.stop()
}

// SetTempo clamps bpm to the supported range. While running, a new tempo
// restarts the beat so the next one fires immediately.
func (c *Controller) SetTempo(bpm int) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	bpm = ClampTempo(bpm)
	c.mu.Lock()
	old := c.s.Tempo
	if old == bpm || c.closed {
		c.mu.Unlock()
		return
	}
	c.s.Tempo = bpm
	snap := c.s
	c.mu.Unlock()

	log.TempoChange(old, bpm)
	c.notify(snap)
	if snap.Running {
		c.restart()
	}
}

func (c *Controller) ApplyPreset(p Preset) { c.SetTempo(p.Tempo) }

// SetSound switches the timbre. While running, the beat restarts with the
// interval unchanged.
func (c *Controller) SetSound(id synth.SoundID) error {
	p, err := synth.Lookup(id)
	if err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	old := c.s.Sound
	if old == id || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.s.Sound = id
	c.profile = p
	snap := c.s
	c.mu.Unlock()

	log.SoundChange(string(old), string(id))
	c.notify(snap)
	if snap.Running {
		c.restart()
	}
	return nil
}

// SetVolume takes effect on the next beat without touching the scheduler.
func (c *Controller) SetVolume(v float64) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	v = ClampVolume(v)
	c.mu.Lock()
	if c.s.Volume == v || c.closed {
		c.mu.Unlock()
		return
	}
	c.s.Volume = v
	snap := c.s
	c.mu.Unlock()

	log.Debugf("volume %d%%", snap.VolumePercent())
	c.notify(snap)
}

// Close stops playback, releases the wake lock and logs the session totals.
func (c *Controller) Close() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stop()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	plays, beats := c.plays, c.beats
	c.mu.Unlock()

	if c.wake != nil {
		c.wake.Close()
	}
	log.SessionEnd(plays, beats)
}

func (c *Controller) start() {
	c.mu.Lock()
	if c.s.Running || c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.resume()

	c.mu.Lock()
	c.s.Running = true
	c.s.BeatCount = 0
	c.startedAt = c.now()
	c.plays++
	snap := c.s
	c.mu.Unlock()

	if c.wake != nil {
		c.wake.Acquire()
	}
	log.PlaybackStart(snap.Tempo, string(snap.Sound), snap.Volume)
	c.notify(snap)
	c.sched.Start(snap.Interval(), c.beat)
}

func (c *Controller) stop() {
	c.mu.Lock()
	if !c.s.Running {
		c.mu.Unlock()
		return
	}
	// a tick racing with this sees Running false and does nothing
	c.s.Running = false
	c.mu.Unlock()

	// a beat already queued is still counted once Stop has waited for it
	c.sched.Stop()

	c.mu.Lock()
	snap := c.s
	elapsed := c.now().Sub(c.startedAt)
	c.beats += snap.BeatCount
	c.mu.Unlock()

	if c.wake != nil {
		c.wake.Release()
	}
	log.PlaybackStop(snap.Tempo, string(snap.Sound), snap.BeatCount, elapsed)
	c.notify(snap)
}

func (c *Controller) restart() {
	c.sched.Stop()
	c.resume()
	c.sched.Start(c.Snapshot().Interval(), c.beat)
}

func (c *Controller) resume() {
	if err := c.renderer.EnsureResumed(); err != nil {
		log.Warnf("audio output: %v", err)
	}
}

// beat runs on the scheduler. Only beats the renderer queued are counted.
func (c *Controller) beat() {
	c.mu.Lock()
	if !c.s.Running {
		c.mu.Unlock()
		return
	}
	p, volume := c.profile, c.s.Volume
	c.mu.Unlock()

	if !c.renderer.RenderBeat(p, volume) {
		return
	}

	c.mu.Lock()
	c.s.BeatCount++
	snap := c.s
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) notify(s Session) {
	c.mu.Lock()
	fn := c.observer
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
