// Package tray is the macOS menu-bar control. On other platforms every call
// is a no-op and Init returns a channel that never closes.
package tray

import (
	"fmt"
	"sync"
	"time"

	"hocus/metronome"
	"hocus/synth"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	toggleFn func()

	stateMu sync.Mutex
	playing bool
	pulse   bool
	status  = "hocus – stopped"

	deviceMu    sync.Mutex
	deviceNames []string
	deviceSel   string
	deviceCb    func(string)

	presetMu sync.Mutex
	presets  []metronome.Preset
	presetCb func(metronome.Preset)

	soundMu  sync.Mutex
	sounds   []synth.Profile
	soundSel synth.SoundID
	soundCb  func(synth.SoundID)

	isBTFn func(string) bool
)

func OnToggle(fn func()) { toggleFn = fn }

func SetPresets(p []metronome.Preset, onSelect func(metronome.Preset)) {
	presetMu.Lock()
	presets = p
	presetCb = onSelect
	presetMu.Unlock()
}

func SetSounds(p []synth.Profile, selected synth.SoundID, onSelect func(synth.SoundID)) {
	soundMu.Lock()
	sounds = p
	soundSel = selected
	soundCb = onSelect
	soundMu.Unlock()
}

func SetDevices(names []string, selected string, onSwitch func(name string)) {
	deviceMu.Lock()
	deviceNames = names
	deviceSel = selected
	if onSwitch != nil {
		deviceCb = onSwitch
	}
	deviceMu.Unlock()
}

func SetBTCheck(fn func(string) bool) {
	isBTFn = fn
}

// Update reflects a session snapshot in the icon, the Start/Stop title and
// the tooltip. Called on every beat; only changes touch the menu bar.
func Update(s metronome.Session) {
	text := Status(s)

	stateMu.Lock()
	playChanged := s.Running != playing
	pulseChanged := s.Pulse() != pulse
	textChanged := text != status
	playing, pulse, status = s.Running, s.Pulse(), text
	stateMu.Unlock()

	if playChanged {
		updatePlayingItem(s.Running)
	}
	if playChanged || pulseChanged {
		updateIcon(s.Running, s.Pulse())
	}
	if textChanged {
		updateTooltip(text)
	}
	selectSound(s.Sound)
}

func SetError(msg string) {
	updateTooltip("hocus – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		stateMu.Lock()
		text := status
		stateMu.Unlock()
		updateTooltip(text)
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}

// Status is the one-line tooltip text for s.
func Status(s metronome.Session) string {
	name := string(s.Sound)
	if p, err := synth.Lookup(s.Sound); err == nil {
		name = p.Name
	}
	state := "stopped"
	if s.Running {
		state = "playing"
	}
	return fmt.Sprintf("hocus – %s · %d bpm · %s · %d%%", state, s.Tempo, name, s.VolumePercent())
}

func deviceDisplayName(name string) string {
	if isBTFn != nil && isBTFn(name) {
		return name + " [⚠ clicks will lag]"
	}
	return name
}

func presetTitle(p metronome.Preset) string {
	return fmt.Sprintf("%s (%d bpm) – %s", p.Name, p.Tempo, p.Description)
}
