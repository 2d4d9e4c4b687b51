package wakelock

import (
	"errors"
	"testing"
)

func newTestGuard(t *testing.T, inh Inhibitor) *Guard {
	t.Helper()
	g := NewGuard(inh, "test")
	t.Cleanup(g.Close)
	return g
}

func TestGuardAcquireRelease(t *testing.T) {
	f := &Fake{}
	g := newTestGuard(t, f)

	g.Acquire()
	g.Sync()
	if !g.Held() || !f.Active() {
		t.Fatal("lock not held after Acquire")
	}

	g.Release()
	g.Sync()
	if g.Held() || f.Active() {
		t.Fatal("lock still held after Release")
	}

	in, out, doubles := f.Counts()
	if in != 1 || out != 1 || doubles != 0 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/0", in, out, doubles)
	}
}

func TestGuardDoubleAcquireNoop(t *testing.T) {
	f := &Fake{}
	g := newTestGuard(t, f)

	g.Acquire()
	g.Sync()
	g.Acquire()
	g.Acquire()
	g.Sync()

	in, _, doubles := f.Counts()
	if in != 1 || doubles != 0 {
		t.Fatalf("inhibits = %d doubles = %d, want 1 and 0", in, doubles)
	}
}

func TestGuardReleaseWhileNotHeldNoop(t *testing.T) {
	f := &Fake{}
	g := newTestGuard(t, f)

	g.Release()
	g.Release()
	g.Sync()

	in, out, _ := f.Counts()
	if in != 0 || out != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", in, out)
	}
}

func TestGuardRapidToggleEndsInLastState(t *testing.T) {
	f := &Fake{}
	g := newTestGuard(t, f)

	for i := 0; i < 100; i++ {
		g.Acquire()
		g.Release()
	}
	g.Acquire()
	g.Sync()

	if !f.Active() {
		t.Fatal("last request was Acquire, lock should be held")
	}
	if _, _, doubles := f.Counts(); doubles != 0 {
		t.Fatalf("doubles = %d, want 0", doubles)
	}
}

func TestGuardFailureSwallowed(t *testing.T) {
	f := &Fake{}
	f.SetError(errors.New("bus gone"))
	g := newTestGuard(t, f)

	g.Acquire()
	g.Sync()
	if g.Held() {
		t.Fatal("Held after failed acquire")
	}

	// next request after recovery retries
	f.SetError(nil)
	g.Release()
	g.Acquire()
	g.Sync()
	if !g.Held() {
		t.Fatal("lock not acquired after recovery")
	}
}

func TestGuardUnsupported(t *testing.T) {
	g := newTestGuard(t, nil)
	g.Acquire()
	g.Sync()
	if g.Held() {
		t.Fatal("unsupported platform reported a held lock")
	}
	g.Release()
	g.Sync()
}

func TestGuardCloseReleases(t *testing.T) {
	f := &Fake{}
	g := NewGuard(f, "test")

	g.Acquire()
	g.Close()
	g.Close() // idempotent

	if f.Active() {
		t.Fatal("lock held after Close")
	}

	// requests after Close are ignored
	g.Acquire()
	g.Sync()
	if f.Active() {
		t.Fatal("Acquire after Close took the lock")
	}
}

func TestDisabled(t *testing.T) {
	if err := Disabled().Inhibit("x"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}
