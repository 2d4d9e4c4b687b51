package synth

import (
	"math"

	"hocus/audio"
)

// floorRatio is the envelope level, relative to peak, reached at Profile.Decay.
const floorRatio = 0.01

// Oscillator returns the waveform value at phase (in cycles) in [-1, 1].
func Oscillator(w Waveform, phase float64) float64 {
	_, frac := math.Modf(phase)
	if frac < 0 {
		frac++
	}
	switch w {
	case Square:
		if frac < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		return 1 - 4*math.Abs(frac-0.5)
	}
	return math.Sin(2 * math.Pi * frac)
}

// Render returns one burst as interleaved int16 PCM in format f. The
// amplitude starts at Gain*volume and decays exponentially to 1% of that at
// Decay, where the burst ends.
func Render(p Profile, volume float64, f audio.Format) []int16 {
	volume = math.Max(0, math.Min(1, volume))
	if f.SampleRate <= 0 || f.Channels <= 0 || p.Decay <= 0 {
		return nil
	}

	decay := p.Decay.Seconds()
	k := -math.Log(floorRatio) / decay
	peak := p.Gain * volume * 32767

	n := int(float64(f.SampleRate) * decay)
	samples := make([]int16, n*f.Channels)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(f.SampleRate)
		envelope := math.Exp(-t * k)
		s := int16(Oscillator(p.Waveform, p.Frequency*t) * peak * envelope)
		for c := 0; c < f.Channels; c++ {
			samples[i*f.Channels+c] = s
		}
	}
	return samples
}
