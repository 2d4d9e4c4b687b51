package tray

import (
	"strings"
	"testing"

	"hocus/metronome"
	"hocus/synth"
)

func TestStatus(t *testing.T) {
	s := metronome.Session{Tempo: 120, Volume: 0.75, Sound: synth.Wood, Running: true}
	got := Status(s)
	for _, want := range []string{"playing", "120 bpm", "Wood Block", "75%"} {
		if !strings.Contains(got, want) {
			t.Errorf("Status() = %q, missing %q", got, want)
		}
	}
	if got := Status(metronome.Session{Tempo: 80, Sound: synth.Click}); !strings.Contains(got, "stopped") {
		t.Errorf("Status() = %q, want stopped", got)
	}
}

func TestDeviceDisplayName(t *testing.T) {
	SetBTCheck(func(name string) bool { return strings.Contains(name, "AirPods") })
	t.Cleanup(func() { SetBTCheck(nil) })

	if got := deviceDisplayName("AirPods Pro"); !strings.Contains(got, "lag") {
		t.Errorf("BT device not flagged: %q", got)
	}
	if got := deviceDisplayName("Built-in Output"); got != "Built-in Output" {
		t.Errorf("wired device renamed: %q", got)
	}
}

func TestPresetTitle(t *testing.T) {
	got := presetTitle(metronome.DefaultPresets()[0])
	if got != "Slow Focus (60 bpm) – Deep work" {
		t.Errorf("presetTitle = %q", got)
	}
}

func TestUpdateTracksState(t *testing.T) {
	Update(metronome.Session{Tempo: 90, Sound: synth.Tick, Running: true, BeatCount: 2})
	stateMu.Lock()
	p, pl := playing, pulse
	stateMu.Unlock()
	if !p || !pl {
		t.Fatalf("playing=%v pulse=%v, want true/true", p, pl)
	}

	Update(metronome.Session{Tempo: 90, Sound: synth.Tick, Running: true, BeatCount: 3})
	stateMu.Lock()
	pl = pulse
	stateMu.Unlock()
	if pl {
		t.Fatal("pulse should be off on odd beats")
	}
}
