// Package shutdown routes the signals that should end a session to one channel.
package shutdown

import (
	"os"
	"os/signal"
)

// Notify relays the platform's termination signals to ch.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, Signals...)
}

// OnSignal runs fn once, on its own goroutine, when a termination signal
// arrives.
func OnSignal(fn func()) {
	ch := make(chan os.Signal, 1)
	Notify(ch)
	go func() {
		<-ch
		signal.Stop(ch)
		fn()
	}()
}
