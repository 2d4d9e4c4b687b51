package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"hocus/audio"
	"hocus/config"
	"hocus/doctor"
	"hocus/hotkey"
	"hocus/log"
	"hocus/metronome"
	"hocus/shutdown"
	"hocus/synth"
	"hocus/tray"
	"hocus/wakelock"
)

var version = "dev"

const wakeReason = "hocus metronome is playing"

var (
	ctrl *metronome.Controller
	sink EventSink = tuiSink{}

	// guiMode is set by initGUI before run starts.
	guiMode bool
)

var deviceSelectChan = make(chan struct{}, 1)

var shutdownOnce sync.Once

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if ctrl != nil {
			ctrl.Close()
		}
		log.Close()
		tray.Quit()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		quitGUI()
		os.Exit(0)
	})
}

// flags holds the command line. Values only override the environment
// config when the flag was given explicitly.
type flags struct {
	tempo    *int
	volume   *float64
	sound    *string
	backend  *string
	device   *string
	setup    *bool
	logLevel *string
	logPath  *string
	noWake   *bool
	hotkey   *bool
	tui      *bool
	test     *bool
	doctor   *bool
	version  *bool
}

func defineFlags(fs *flag.FlagSet) *flags {
	f := &flags{
		tempo:    fs.Int("tempo", metronome.DefaultTempo, fmt.Sprintf("Tempo in beats per minute (%d-%d)", metronome.MinTempo, metronome.MaxTempo)),
		volume:   fs.Float64("volume", metronome.DefaultVolume, "Click volume from 0 to 1"),
		sound:    fs.String("sound", string(synth.DefaultSound), "Click sound: "+soundList()),
		backend:  fs.String("backend", audio.DefaultBackend, "Audio backend: "+strings.Join(audio.Backends(), ", ")),
		device:   fs.String("device", "", "Use named output device"),
		setup:    fs.Bool("setup", false, "Select output device (otherwise uses system default)"),
		logLevel: fs.String("loglevel", "info", "Diagnostics log level: debug, info, warn, error"),
		logPath:  fs.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)"),
		noWake:   fs.Bool("nowake", false, "Let the display sleep while playing"),
		hotkey:   fs.Bool("hotkey", false, "Register the global "+hotkey.Combo+" shortcut (tap: start/stop, hold: next preset)"),
		tui:      fs.Bool("tui", true, "Run with terminal UI"),
		test:     fs.Bool("test", false, "Test mode (headless, stdin-driven)"),
		doctor:   fs.Bool("doctor", false, "Run system diagnostics and exit"),
		version:  fs.Bool("version", false, "Print version and exit"),
	}
	fs.Bool("gui", false, "Run the desktop panel (needs a build with -tags gui)")
	return f
}

// apply copies explicitly set flags over cfg.
func (f *flags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "tempo":
			cfg.Tempo = *f.tempo
		case "volume":
			cfg.Volume = *f.volume
		case "sound":
			cfg.Sound = *f.sound
		case "backend":
			cfg.Backend = *f.backend
		case "device":
			cfg.Device = *f.device
		case "loglevel":
			cfg.LogLevel = *f.logLevel
		case "nowake":
			cfg.WakeLock = !*f.noWake
		case "hotkey":
			cfg.Hotkey = *f.hotkey
		}
	})
}

func soundList() string {
	var ids []string
	for _, p := range synth.Profiles() {
		ids = append(ids, string(p.ID))
	}
	return strings.Join(ids, ", ")
}

// loadConfig reads the environment, applies flags and validates the result.
func loadConfig(fs *flag.FlagSet, args []string) (*flags, config.Config, error) {
	f := defineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, config.Config{}, err
	}
	cfg := config.Load()
	f.apply(fs, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, config.Config{}, err
	}
	return f, cfg, nil
}

func run() {
	f, cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*f.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if *f.version {
		fmt.Printf("hocus %s\n", version)
		os.Exit(0)
	}

	if *f.doctor {
		os.Exit(doctor.Run(doctor.Options{Backend: cfg.Backend, Device: cfg.Device}))
	}

	if *f.test {
		runTestMode(cfg)
		return
	}

	// Resolve -setup into -device early (before daemonization)
	if *f.setup && cfg.Device == "" && !guiMode {
		ctx, err := audio.NewContext(cfg.Backend)
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		if dev, err := audio.SelectDevice(ctx); err != nil {
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		} else if dev != nil {
			cfg.Device = dev.Name
		}
		ctx.Close()
	}

	// Daemonize in non-TUI mode: re-exec in background, return shell prompt
	if !*f.tui && !guiMode && os.Getenv("_HOCUS_BG") == "" {
		args := os.Args[1:]
		if cfg.Device != "" {
			args = append(args, "-device", cfg.Device)
		}
		exe, _ := os.Executable()
		cmd := exec.Command(exe, args...)
		cmd.Env = append(os.Environ(), "_HOCUS_BG=1")
		devnull, _ := os.Open(os.DevNull)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	ctx := guiAudioCtx
	if ctx == nil {
		ctx, err = audio.NewContext(cfg.Backend)
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Printf("Error initializing audio context: %v\n", err)
			os.Exit(1)
		}
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if cfg.Device != "" {
		selectedDevice, err = audio.FindDevice(ctx, cfg.Device)
		if err != nil || selectedDevice == nil {
			log.Warnf("output device %q not available, using system default", cfg.Device)
		}
	}
	deviceName := "system default"
	if selectedDevice != nil {
		deviceName = selectedDevice.Name
	}
	log.SessionStart(cfg.Backend, deviceName)

	engine := synth.NewEngine(nil)
	outs := newOutputs(ctx, cfg.OutputConfig(), engine)

	var inh wakelock.Inhibitor = wakelock.Disabled()
	if cfg.WakeLock {
		inh = wakelock.New()
	}
	guard := wakelock.NewGuard(inh, wakeReason)

	ctrl = metronome.NewController(engine,
		metronome.WithWakeLock(guard),
		metronome.WithSession(cfg.Tempo, cfg.Volume, cfg.SoundID()),
	)

	// Start TUI
	if !*f.tui || guiMode {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(ctrl, ctrl.Snapshot())
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
	}

	// A missing device is not fatal: beats are skipped until one is picked.
	if err := outs.open(selectedDevice); err != nil {
		log.Warnf("audio output unavailable: %v", err)
		sink.Error("no audio output: " + err.Error())
		sink.DeviceLine(deviceLineText(nil))
	}

	presets := metronome.DefaultPresets()
	attachGUI(ctrl, presets)
	ctrl.OnChange(func(s metronome.Session) {
		sink.SessionChanged(s)
		tray.Update(s)
	})
	sink.SessionChanged(ctrl.Snapshot())

	tray.OnToggle(ctrl.TogglePlay)
	tray.SetPresets(presets, ctrl.ApplyPreset)
	tray.SetSounds(synth.Profiles(), ctrl.Snapshot().Sound, func(id synth.SoundID) {
		if err := ctrl.SetSound(id); err != nil {
			log.Warnf("tray sound: %v", err)
		}
	})
	tray.SetBTCheck(audio.IsBluetooth)
	if names := outs.names(); len(names) > 0 {
		tray.SetDevices(names, outs.selectedName(), outs.switchByName)
	}

	var trayQuit <-chan struct{}
	if !guiMode {
		trayQuit = tray.Init()
	}
	tray.Update(ctrl.Snapshot())

	go outs.watch(3 * time.Second)

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		gracefulShutdown()
	}()

	var tap, hold <-chan struct{}
	if cfg.Hotkey {
		hk := hotkey.New()
		if err := hk.Register(); err != nil {
			log.Warnf("hotkey register error: %v", err)
			sink.Error("global hotkey unavailable: " + err.Error())
		} else {
			defer hk.Unregister()
			g := hotkey.NewGestures(hk, hotkey.DefaultLongPress)
			defer g.Close()
			tap, hold = g.Tap(), g.Hold()
			tuiSend(HotkeyHelpMsg{Enabled: true})
		}
	}

	next := 0
	for {
		select {
		case <-tap:
			log.Info("hotkey_tap")
			ctrl.TogglePlay()

		case <-hold:
			p := presets[next%len(presets)]
			next++
			log.Info("hotkey_hold: " + p.Name)
			ctrl.ApplyPreset(p)

		case <-deviceSelectChan:
			outs.choose()
		}
	}
}
