package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
)

// mixer feeds queued bursts to a device as one continuous interleaved int16
// stream. Each burst is a streamer in a beep.Mixer, which drops it once it
// has drained and plays silence while nothing is queued.
type mixer struct {
	channels int

	mu     sync.Mutex
	mix    beep.Mixer
	frames [][2]float64
}

func newMixer(channels int) *mixer {
	return &mixer{channels: max(channels, 1)}
}

// add queues one interleaved burst as a new voice.
func (m *mixer) add(samples []int16) {
	if len(samples) < m.channels {
		return
	}
	m.mu.Lock()
	m.mix.Add(voice(samples, m.channels))
	m.mu.Unlock()
}

func (m *mixer) reset() {
	m.mu.Lock()
	m.mix.Clear()
	m.mu.Unlock()
}

func (m *mixer) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mix.Len()
}

// voice streams an interleaved burst. Mono bursts go to both sides.
func voice(samples []int16, channels int) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(frames [][2]float64) (n int, ok bool) {
		for n < len(frames) && pos+channels <= len(samples) {
			l := float64(samples[pos]) / 32768
			r := l
			if channels > 1 {
				r = float64(samples[pos+1]) / 32768
			}
			frames[n] = [2]float64{l, r}
			pos += channels
			n++
		}
		return n, n > 0
	})
}

// Read16 fills buf completely and never returns an error. The signature
// matches pulse.Int16Reader.
func (m *mixer) Read16(buf []int16) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(buf) / m.channels
	if cap(m.frames) < n {
		m.frames = make([][2]float64, n)
	}
	frames := m.frames[:n]
	clear(frames)
	m.mix.Stream(frames)

	clear(buf)
	for i, f := range frames {
		for c := range min(m.channels, 2) {
			buf[i*m.channels+c] = toInt16(f[c])
		}
	}
	return len(buf), nil
}

func toInt16(x float64) int16 {
	return int16(max(-32768, min(32767, math.Round(x*32768))))
}

// Read implements io.Reader over signed 16-bit little-endian bytes.
func (m *mixer) Read(p []byte) (int, error) {
	n := len(p) / 2
	if n == 0 {
		return 0, nil
	}
	tmp := make([]int16, n)
	m.Read16(tmp)
	for i, s := range tmp {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}
	return n * 2, nil
}
