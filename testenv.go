package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hocus/audio"
	"hocus/config"
	"hocus/log"
	"hocus/metronome"
	"hocus/synth"
	"hocus/wakelock"
)

// testEnv is the headless metronome driven by stdin in -test mode. Beats
// go to a fake output and the wake lock to an in-memory inhibitor.
type testEnv struct {
	ctrl    *metronome.Controller
	out     *audio.FakeOutput
	wake    *wakelock.Fake
	guard   *wakelock.Guard
	presets []metronome.Preset
	w       *bufio.Writer
}

func newTestEnv(cfg config.Config, w *bufio.Writer, opts ...metronome.Option) (*testEnv, error) {
	out, err := audio.NewFakeContext().NewOutput(nil, cfg.OutputConfig())
	if err != nil {
		return nil, err
	}
	env := &testEnv{
		out:     out.(*audio.FakeOutput),
		wake:    &wakelock.Fake{},
		presets: metronome.DefaultPresets(),
		w:       w,
	}
	env.guard = wakelock.NewGuard(env.wake, wakeReason)
	opts = append([]metronome.Option{
		metronome.WithWakeLock(env.guard),
		metronome.WithSession(cfg.Tempo, cfg.Volume, cfg.SoundID()),
	}, opts...)
	env.ctrl = metronome.NewController(synth.NewEngine(out), opts...)
	return env, nil
}

func (e *testEnv) printf(format string, args ...any) {
	fmt.Fprintf(e.w, format, args...)
	e.w.Flush()
}

// exec runs one command line and reports whether the session should end.
func (e *testEnv) exec(line string) (quit bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToUpper(cmd) {
	case "":
	case "TOGGLE":
		e.ctrl.TogglePlay()
	case "TEMPO":
		bpm, err := strconv.Atoi(arg)
		if err != nil {
			e.printf("ERR tempo %q\n", arg)
			return false
		}
		e.ctrl.SetTempo(bpm)
	case "SOUND":
		id, err := synth.ParseSoundID(arg)
		if err == nil {
			err = e.ctrl.SetSound(id)
		}
		if err != nil {
			log.Warnf("test sound: %v", err)
			e.printf("ERR %v\n", err)
		}
	case "VOLUME":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			e.printf("ERR volume %q\n", arg)
			return false
		}
		e.ctrl.SetVolume(v)
	case "PRESET":
		p, err := metronome.FindPreset(e.presets, arg)
		if err != nil {
			e.printf("ERR %v\n", err)
			return false
		}
		e.ctrl.ApplyPreset(p)
	case "STATUS":
		e.guard.Sync()
		e.printf("%s\n", e.status())
	case "SLEEP":
		if ms, err := strconv.Atoi(arg); err == nil {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
	case "QUIT":
		return true
	default:
		e.printf("ERR unknown command %q\n", cmd)
	}
	return false
}

func (e *testEnv) status() string {
	s := e.ctrl.Snapshot()
	return fmt.Sprintf("STATUS %s tempo=%d sound=%s volume=%d beats=%d bursts=%d wake=%t",
		s.State(), s.Tempo, s.Sound, s.VolumePercent(), s.BeatCount, e.out.BurstCount(), e.wake.Active())
}

func (e *testEnv) close() {
	e.ctrl.Close()
	e.out.Close()
}

func runTestMode(cfg config.Config) {
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	log.SessionStart(audio.BackendFake, "fake output")

	env, err := newTestEnv(cfg, bufio.NewWriter(os.Stdout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output: %v\n", err)
		os.Exit(1)
	}
	defer env.close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if env.exec(scanner.Text()) {
			return
		}
	}
}
