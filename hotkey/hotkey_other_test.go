//go:build !linux

package hotkey

import (
	"testing"
	"time"
)

func TestForwardCoalescesPresses(t *testing.T) {
	in := make(chan struct{})
	out := make(chan struct{}, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		forward(in, out, done)
		close(exited)
	}()

	in <- struct{}{}
	in <- struct{}{}
	in <- struct{}{}
	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("forward did not stop after done was closed")
	}
	if len(out) != 1 {
		t.Fatalf("pending presses = %d, want 1", len(out))
	}
}
