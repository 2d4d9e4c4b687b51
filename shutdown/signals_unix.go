//go:build !windows

package shutdown

import (
	"os"
	"syscall"
)

// Signals ends the session on Ctrl+C, kill, and a closed terminal.
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
