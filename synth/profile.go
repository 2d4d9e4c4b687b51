// Package synth holds the fixed sound profiles and renders one percussive
// burst per beat.
package synth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type SoundID string

const (
	Click SoundID = "click"
	Wood  SoundID = "wood"
	Beep  SoundID = "beep"
	Tick  SoundID = "tick"
)

const DefaultSound = Click

var ErrUnknownSound = errors.New("unknown sound")

type Waveform int

const (
	Sine Waveform = iota
	Square
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	}
	return "sine"
}

// Profile is the immutable synthesis recipe for one timbre.
type Profile struct {
	ID        SoundID
	Name      string
	Frequency float64 // Hz
	Waveform  Waveform
	Gain      float64 // peak multiplier, 0-1
	Decay     time.Duration
}

var profiles = [...]Profile{
	{ID: Click, Name: "Classic Click", Frequency: 1000, Waveform: Sine, Gain: 0.3, Decay: 50 * time.Millisecond},
	{ID: Wood, Name: "Wood Block", Frequency: 800, Waveform: Sine, Gain: 0.4, Decay: 80 * time.Millisecond},
	{ID: Beep, Name: "Digital Beep", Frequency: 1200, Waveform: Sine, Gain: 0.2, Decay: 100 * time.Millisecond},
	{ID: Tick, Name: "Soft Tick", Frequency: 600, Waveform: Sine, Gain: 0.15, Decay: 40 * time.Millisecond},
}

// Profiles returns a copy of the table in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles[:])
	return out
}

func Lookup(id SoundID) (Profile, error) {
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w %q", ErrUnknownSound, string(id))
}

// ParseSoundID accepts an ID or display name, case-insensitively.
func ParseSoundID(s string) (SoundID, error) {
	s = strings.TrimSpace(s)
	for _, p := range profiles {
		if strings.EqualFold(s, string(p.ID)) || strings.EqualFold(s, p.Name) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("%w %q (use click, wood, beep or tick)", ErrUnknownSound, s)
}

// Next returns the profile after id, wrapping around. Used by the UI to cycle sounds.
func Next(id SoundID) SoundID {
	for i, p := range profiles {
		if p.ID == id {
			return profiles[(i+1)%len(profiles)].ID
		}
	}
	return DefaultSound
}
