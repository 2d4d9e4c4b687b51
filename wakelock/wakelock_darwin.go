//go:build darwin

package wakelock

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

// caffeinate keeps the display and system awake until it is killed or this
// process exits (-w).
type caffeinate struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

func New() Inhibitor { return &caffeinate{} }

func (c *caffeinate) Inhibit(string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd != nil {
		return nil
	}
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	cmd := exec.Command(path, "-d", "-i", "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start caffeinate: %w", err)
	}
	c.cmd = cmd
	return nil
}

func (c *caffeinate) Uninhibit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil
	}
	cmd := c.cmd
	c.cmd = nil
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop caffeinate: %w", err)
	}
	cmd.Wait()
	return nil
}
