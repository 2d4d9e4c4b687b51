package doctor

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"hocus/audio"
	"hocus/hotkey"
	"hocus/metronome"
	"hocus/shutdown"
	"hocus/synth"
	"hocus/wakelock"
)

// Options selects the audio backend and device under test.
type Options struct {
	Backend string
	Device  string
}

// jitterLimit is the largest single-beat deviation still reported as a pass.
const jitterLimit = 20 * time.Millisecond

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	resetTerminal()
	shutdown.OnSignal(func() {
		fmt.Println("\nInterrupted")
		os.Exit(1)
	})

	fmt.Println("hocus doctor - interactive system diagnostics")
	fmt.Println("=============================================")

	reader := bufio.NewReader(os.Stdin)
	allPass := true

	if !checkOutput(reader, opts) {
		allPass = false
	}
	checkWakeLock()
	if !checkTimer() {
		allPass = false
	}
	if !checkHotkey() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkOutput(reader *bufio.Reader, opts Options) bool {
	fmt.Println()
	fmt.Println("[1/4] Audio output")

	ctx, err := audio.NewContext(opts.Backend)
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	device, ok := chooseDevice(reader, ctx, opts.Device)
	if !ok {
		return false
	}
	if device != nil && audio.IsBluetooth(device.Name) {
		fmt.Println("  WARN: Bluetooth output adds 100-200ms latency, clicks will trail the beat")
	}

	out, err := ctx.NewOutput(device, audio.DefaultConfig(opts.Backend))
	if err != nil {
		fmt.Printf("  FAIL: cannot open output: %v\n", err)
		return false
	}
	defer out.Close()

	engine := synth.NewEngine(out)
	if err := engine.EnsureResumed(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	fmt.Println()
	fmt.Print("Press Enter to play each sound...")
	reader.ReadString('\n')

	for _, p := range synth.Profiles() {
		fmt.Printf("  %-13s %4.0f Hz\n", p.Name, p.Frequency)
		for i := 0; i < 2; i++ {
			engine.RenderBeat(p, metronome.DefaultVolume)
			time.Sleep(400 * time.Millisecond)
		}
	}

	fmt.Print("Did you hear four different sounds? [y/n]: ")
	confirm, _ := reader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))
	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: output verified by user")
		return true
	}
	fmt.Println("  FAIL: output not confirmed")
	return false
}

// chooseDevice returns nil for the system default device.
func chooseDevice(reader *bufio.Reader, ctx audio.Context, name string) (*audio.DeviceInfo, bool) {
	if name != "" {
		dev, err := audio.FindDevice(ctx, name)
		if err != nil || dev == nil {
			fmt.Printf("  FAIL: device %q not found\n", name)
			return nil, false
		}
		fmt.Printf("Using device: %s\n", dev.Name)
		return dev, true
	}

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) <= 1 {
		fmt.Println("Using system default output")
		return nil, true
	}

	fmt.Println()
	fmt.Println("Select output device:")
	fmt.Println("  0. system default")
	for i, d := range devices {
		fmt.Printf("  %d. %s\n", i+1, d.Name)
	}
	fmt.Printf("Choice [0-%d]: ", len(devices))

	choice, _ := reader.ReadString('\n')
	idx, ok := parseChoice(choice, len(devices))
	if !ok {
		fmt.Println("  FAIL: invalid choice")
		return nil, false
	}
	if idx == 0 {
		return nil, true
	}
	fmt.Printf("Selected: %s\n", devices[idx-1].Name)
	return &devices[idx-1], true
}

// parseChoice reads a menu number in [0, n]. Empty input picks 0.
func parseChoice(s string, n int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	var idx int
	if _, err := fmt.Sscanf(s, "%d", &idx); err != nil {
		return 0, false
	}
	return idx, idx >= 0 && idx <= n
}

func checkWakeLock() {
	fmt.Println()
	fmt.Println("[2/4] Screen wake lock")

	inh := wakelock.New()
	if err := inh.Inhibit("hocus doctor"); err != nil {
		if errors.Is(err, wakelock.ErrUnsupported) {
			fmt.Printf("  WARN: %v (display may sleep during long sessions)\n", err)
			return
		}
		fmt.Printf("  WARN: inhibit failed: %v\n", err)
		return
	}
	if err := inh.Uninhibit(); err != nil {
		fmt.Printf("  WARN: release failed: %v\n", err)
		return
	}
	fmt.Println("  PASS: wake lock acquired and released")
}

func checkTimer() bool {
	fmt.Println()
	fmt.Println("[3/4] Beat timer")

	const bpm, beats = 120, 9
	fmt.Printf("  Measuring %d beats at %d bpm...\n", beats, bpm)

	times := measureBeats(metronome.NewTickerScheduler(), metronome.Interval(bpm), beats)
	mean, worst := jitter(times, metronome.Interval(bpm))
	fmt.Printf("  mean interval %v, worst deviation %v\n", mean.Round(time.Microsecond), worst.Round(time.Microsecond))

	if worst > jitterLimit {
		fmt.Printf("  FAIL: deviation above %v, beats will sound uneven\n", jitterLimit)
		return false
	}
	fmt.Println("  PASS: timer steady")
	return true
}

// measureBeats runs s until n beats have fired and returns their times.
func measureBeats(s metronome.Scheduler, interval time.Duration, n int) []time.Time {
	times := make([]time.Time, 0, n)
	ch := make(chan time.Time, n)
	s.Start(interval, func() {
		select {
		case ch <- time.Now():
		default:
		}
	})
	timeout := time.After(time.Duration(n+2) * interval)
	for len(times) < n {
		select {
		case t := <-ch:
			times = append(times, t)
		case <-timeout:
			s.Stop()
			return times
		}
	}
	s.Stop()
	return times
}

// jitter returns the mean gap between beats and the largest deviation of
// any gap from interval.
func jitter(times []time.Time, interval time.Duration) (mean, worst time.Duration) {
	if len(times) < 2 {
		return 0, 0
	}
	var total time.Duration
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		total += gap
		dev := gap - interval
		if dev < 0 {
			dev = -dev
		}
		worst = max(worst, dev)
	}
	return total / time.Duration(len(times)-1), worst
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[4/4] Hotkey detection")
	info, err := hotkey.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  %s\n", info)
	fmt.Printf("Press %s...\n", hotkey.Combo)

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		// Reset terminal after hotkey - it may leave terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}
