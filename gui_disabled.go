//go:build !gui

package main

import (
	"hocus/audio"
	"hocus/metronome"
)

// Stubs for non-GUI builds (guiMode stays false)
var guiAudioCtx audio.Context

func initGUI() {
	panic("hocus: built without GUI support (rebuild with -tags gui)")
}

func attachGUI(*metronome.Controller, []metronome.Preset) {}
func quitGUI()                                            {}
