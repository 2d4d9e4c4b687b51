package main

import (
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hocus/metronome"
	"hocus/synth"
)

type fakeControls struct {
	mu    sync.Mutex
	calls []string
	tempo int
	vol   float64
	sound synth.SoundID
}

func (f *fakeControls) record(c string) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeControls) TogglePlay() { f.record("toggle") }

func (f *fakeControls) SetTempo(bpm int) {
	f.record("tempo")
	f.tempo = bpm
}

func (f *fakeControls) SetVolume(v float64) {
	f.record("volume")
	f.vol = v
}

func (f *fakeControls) ApplyPreset(p metronome.Preset) {
	f.record("preset")
	f.tempo = p.Tempo
}

func (f *fakeControls) SetSound(id synth.SoundID) error {
	f.record("sound")
	f.sound = id
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds one key and runs the resulting command inline.
func press(t *testing.T, m tuiModel, k string) tuiModel {
	t.Helper()
	next, cmd := m.Update(key(k))
	if cmd != nil {
		cmd()
	}
	return next.(tuiModel)
}

func TestTUIKeysDriveController(t *testing.T) {
	ctl := &fakeControls{}
	m := newTUIModel(ctl, metronome.Session{Tempo: 100, Volume: 0.5, Sound: synth.Click})

	m = press(t, m, "space")
	m = press(t, m, "up")
	if ctl.tempo != 101 {
		t.Fatalf("tempo = %d, want 101", ctl.tempo)
	}
	m = press(t, m, "down")
	if ctl.tempo != 99 {
		t.Fatalf("tempo = %d, want 99 (keys step from the shown session)", ctl.tempo)
	}
	m = press(t, m, "s")
	if ctl.sound != synth.Wood {
		t.Fatalf("sound = %q, want wood", ctl.sound)
	}
	m = press(t, m, "+")
	if ctl.vol != 0.6 {
		t.Fatalf("volume = %v, want 0.6", ctl.vol)
	}
	m = press(t, m, "1")
	if ctl.tempo != 60 {
		t.Fatalf("preset tempo = %d, want 60", ctl.tempo)
	}
	press(t, m, "9") // no ninth preset

	want := []string{"toggle", "tempo", "tempo", "sound", "volume", "preset"}
	if strings.Join(ctl.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", ctl.calls, want)
	}
}

func TestTUIQuit(t *testing.T) {
	m := newTUIModel(&fakeControls{}, metronome.Session{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c should return tea.Quit")
	}
}

func TestStepVolume(t *testing.T) {
	tests := []struct {
		v, delta, want float64
	}{
		{0.5, 0.1, 0.6},
		{0.95, 0.1, 1},
		{0.05, -0.1, 0},
		{0.33, 0.1, 0.4},
		{0, -0.1, 0},
	}
	for _, tt := range tests {
		if got := stepVolume(tt.v, tt.delta); got != tt.want {
			t.Errorf("stepVolume(%v, %v) = %v, want %v", tt.v, tt.delta, got, tt.want)
		}
	}
}

func TestTUIFlashOnBeat(t *testing.T) {
	m := newTUIModel(nil, metronome.Session{Tempo: 120})
	s := metronome.Session{Tempo: 120, Running: true, BeatCount: 1}

	next, cmd := m.Update(SessionMsg{Session: s})
	m = next.(tuiModel)
	if !m.flash || cmd == nil {
		t.Fatal("a new beat should flash and schedule the fade")
	}

	// a fade for an older beat is ignored
	s.BeatCount = 2
	next, _ = m.Update(SessionMsg{Session: s})
	next, _ = next.(tuiModel).Update(flashDoneMsg{beat: 1})
	if !next.(tuiModel).flash {
		t.Fatal("stale fade cleared the flash")
	}
	next, _ = next.(tuiModel).Update(flashDoneMsg{beat: 2})
	if next.(tuiModel).flash {
		t.Fatal("flash should fade")
	}

	s.Running = false
	next, cmd = next.(tuiModel).Update(SessionMsg{Session: s})
	if next.(tuiModel).flash || cmd != nil {
		t.Fatal("stopping should not flash")
	}
}

func TestTUIView(t *testing.T) {
	m := newTUIModel(nil, metronome.Session{Tempo: 120, Volume: 0.25, Sound: synth.Beep, Running: true, BeatCount: 7})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("view before size = %q", got)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.(tuiModel).Update(DeviceLineMsg{Text: "out: AirPods (BT!) (ctrl+g)"})
	next, _ = next.(tuiModel).Update(BluetoothWarningMsg{IsBT: true})
	view := next.(tuiModel).View()

	for _, want := range []string{"PLAYING", "120 bpm", "Digital Beep", "25%", "beats: 7", "AirPods", "Bluetooth"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRenderPulse(t *testing.T) {
	off := renderPulse(false, false)
	on := renderPulse(true, false)
	flash := renderPulse(true, true)
	if strings.Count(off, "\n") != 8 {
		t.Fatalf("pulse rows = %d, want 8", strings.Count(off, "\n"))
	}
	if on == flash {
		t.Fatal("flash should change the pulse")
	}
	if strings.Count(flash, "█") <= strings.Count(on, "█") {
		t.Fatal("flash should fill more cells")
	}
}
