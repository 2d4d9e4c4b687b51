package synth

import (
	"errors"
	"fmt"
	"sync"

	"hocus/audio"
	"hocus/log"
)

var ErrNoOutput = errors.New("no audio output")

// Engine renders beats onto an audio output. A nil output is allowed: every
// beat is then skipped, which keeps the metronome usable without a device.
type Engine struct {
	mu  sync.Mutex
	out audio.Output
}

func NewEngine(out audio.Output) *Engine {
	return &Engine{out: out}
}

// SetOutput replaces the output used from the next beat on and returns the
// previous one. The caller closes it.
func (e *Engine) SetOutput(out audio.Output) audio.Output {
	e.mu.Lock()
	defer e.mu.Unlock()
	old := e.out
	e.out = out
	return old
}

func (e *Engine) output() audio.Output {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

// EnsureResumed resumes the output if the host suspended it.
func (e *Engine) EnsureResumed() error {
	return resume(e.output())
}

func resume(out audio.Output) error {
	if out == nil {
		return ErrNoOutput
	}
	if !out.Suspended() {
		return nil
	}
	if err := out.Resume(); err != nil {
		return fmt.Errorf("resume output: %w", err)
	}
	return nil
}

// RenderBeat queues one burst for p at volume and reports whether it was
// queued. Failures skip the beat and are only logged.
func (e *Engine) RenderBeat(p Profile, volume float64) bool {
	out := e.output()
	if err := resume(out); err != nil {
		log.BeatSkipped(err)
		return false
	}
	if err := out.Play(Render(p, volume, out.Format())); err != nil {
		log.BeatSkipped(fmt.Errorf("queue burst: %w", err))
		return false
	}
	return true
}
