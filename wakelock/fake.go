package wakelock

import "sync"

// Fake is an in-memory Inhibitor that counts calls and flags double locks.
type Fake struct {
	mu         sync.Mutex
	active     bool
	err        error
	inhibits   int
	uninhibits int
	doubles    int
}

func (f *Fake) Inhibit(string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.active {
		f.doubles++
	}
	f.active = true
	f.inhibits++
	return nil
}

func (f *Fake) Uninhibit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		f.uninhibits++
	}
	f.active = false
	return nil
}

// SetError makes Inhibit fail with err (nil clears it).
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *Fake) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Counts returns the number of successful inhibits, uninhibits and inhibits
// issued while a lock was already held.
func (f *Fake) Counts() (inhibits, uninhibits, doubles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inhibits, f.uninhibits, f.doubles
}
