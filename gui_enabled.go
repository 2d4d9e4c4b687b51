//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"hocus/audio"
	"hocus/config"
	"hocus/gui"
	"hocus/metronome"
)

var guiApp *gui.App

// Audio context initialized on main thread for macOS Core Audio compatibility
var guiAudioCtx audio.Context

func initGUI() {
	guiMode = true

	backend := config.Load().Backend
	if b := argValue(os.Args[1:], "backend"); b != "" {
		backend = b
	}

	// Initialize audio context on main thread BEFORE Fyne starts.
	var err error
	guiAudioCtx, err = audio.NewContext(backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}

	// Lock this goroutine to OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	})
	sink = guiApp
	if err := gui.Run(guiApp); err != nil {
		guiAudioCtx.Close()
		panic(err)
	}
	gracefulShutdown()
}

func attachGUI(c *metronome.Controller, presets []metronome.Preset) {
	guiApp.Bind(c, presets)
}

func quitGUI() {
	if guiApp != nil {
		guiApp.Quit()
	}
}
