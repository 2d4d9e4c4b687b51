// Package metronome turns a tempo into a steady stream of rendered beats and
// owns the start/stop state machine around it.
package metronome

import "time"

const (
	MinTempo     = 40
	MaxTempo     = 200
	DefaultTempo = 80

	DefaultVolume = 0.5
)

func ClampTempo(bpm int) int {
	return max(MinTempo, min(MaxTempo, bpm))
}

// ClampVolume maps v into [0, 1]. NaN becomes 0.
func ClampVolume(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	return min(v, 1)
}

// Interval is the time between beats at bpm (60000/bpm ms), after clamping.
func Interval(bpm int) time.Duration {
	return time.Minute / time.Duration(ClampTempo(bpm))
}
