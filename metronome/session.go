package metronome

import (
	"fmt"
	"strings"
	"time"

	"hocus/synth"
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Session is a point-in-time copy of the playback state.
type Session struct {
	Tempo     int
	Volume    float64
	Sound     synth.SoundID
	Running   bool
	BeatCount uint64
}

func (s Session) State() State {
	if s.Running {
		return Running
	}
	return Stopped
}

func (s Session) Interval() time.Duration { return Interval(s.Tempo) }

// Pulse is the visual beat indicator: lit on even beats while running.
func (s Session) Pulse() bool {
	return s.Running && s.BeatCount%2 == 0
}

// VolumePercent is the volume rounded to a whole percentage.
func (s Session) VolumePercent() int {
	return int(s.Volume*100 + 0.5)
}

func (s Session) String() string {
	return fmt.Sprintf("state=%s bpm=%d sound=%s volume=%d%% beats=%d",
		s.State(), s.Tempo, s.Sound, s.VolumePercent(), s.BeatCount)
}

// Preset is a named tempo shortcut.
type Preset struct {
	Name        string
	Tempo       int
	Description string
}

func DefaultPresets() []Preset {
	return []Preset{
		{Name: "Slow Focus", Tempo: 60, Description: "Deep work"},
		{Name: "Medium Focus", Tempo: 80, Description: "Normal productivity"},
		{Name: "Fast Focus", Tempo: 120, Description: "Sprint sessions"},
	}
}

// FindPreset matches a preset by name, case-insensitively. A single word
// such as "slow" matches the preset whose name starts with it.
func FindPreset(presets []Preset, name string) (Preset, error) {
	name = strings.TrimSpace(name)
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	if name != "" {
		for _, p := range presets {
			first, _, _ := strings.Cut(p.Name, " ")
			if strings.EqualFold(first, name) {
				return p, nil
			}
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q", name)
}
