package audio

import (
	"sync"
)

// FakeContext hands out FakeOutputs that record every burst instead of
// playing it. Used by tests and the headless -test mode.
type FakeContext struct {
	mu      sync.Mutex
	outputs []*FakeOutput
}

func NewFakeContext() *FakeContext { return &FakeContext{} }

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake output"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewOutput(_ *DeviceInfo, config OutputConfig) (Output, error) {
	out := NewFakeOutput(config.withDefaults().Format)
	f.mu.Lock()
	f.outputs = append(f.outputs, out)
	f.mu.Unlock()
	return out, nil
}

// Last returns the most recently created output, or nil.
func (f *FakeContext) Last() *FakeOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.outputs) == 0 {
		return nil
	}
	return f.outputs[len(f.outputs)-1]
}

// FakeOutput starts suspended, like a real device that has not been opened.
type FakeOutput struct {
	format Format

	mu        sync.Mutex
	suspended bool
	resumeErr error
	resumes   int
	bursts    [][]int16
	closed    bool
}

func NewFakeOutput(format Format) *FakeOutput {
	return &FakeOutput{format: format, suspended: true}
}

func (f *FakeOutput) Format() Format { return f.format }

func (f *FakeOutput) Suspended() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspended
}

func (f *FakeOutput) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.resumes++
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.suspended = false
	return nil
}

func (f *FakeOutput) Suspend() {
	f.mu.Lock()
	f.suspended = true
	f.mu.Unlock()
}

func (f *FakeOutput) Play(samples []int16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.suspended {
		return ErrSuspended
	}
	f.bursts = append(f.bursts, samples)
	return nil
}

func (f *FakeOutput) Close() {
	f.mu.Lock()
	f.closed = true
	f.suspended = true
	f.mu.Unlock()
}

// SetResumeError makes subsequent Resume calls fail with err (nil clears it).
func (f *FakeOutput) SetResumeError(err error) {
	f.mu.Lock()
	f.resumeErr = err
	f.mu.Unlock()
}

func (f *FakeOutput) Resumes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumes
}

func (f *FakeOutput) BurstCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bursts)
}

// Burst returns the i-th recorded burst.
func (f *FakeOutput) Burst(i int) []int16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.bursts) {
		return nil
	}
	return f.bursts[i]
}

// Peak returns the largest absolute sample of the i-th burst.
func (f *FakeOutput) Peak(i int) int {
	peak := 0
	for _, s := range f.Burst(i) {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
