package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultSampleRate = 44100
	DefaultLatency    = 50 * time.Millisecond
)

const (
	BackendPulse = "pulse"
	BackendMalgo = "malgo"
	BackendOto   = "oto"
	BackendFake  = "fake"
)

var (
	ErrClosed    = errors.New("audio: output closed")
	ErrSuspended = errors.New("audio: output suspended")
)

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]", "bluez",
}

// IsBluetooth reports whether a device name looks like a Bluetooth sink.
// Bluetooth output adds 100-200ms of latency, which is audible against a
// visual beat indicator.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Format describes interleaved signed 16-bit PCM.
type Format struct {
	SampleRate int
	Channels   int
}

type OutputConfig struct {
	Format  Format
	Latency time.Duration
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewOutput(device *DeviceInfo, config OutputConfig) (Output, error)
	Close()
}

// Output is a playback path that can be suspended by the host and resumed on
// demand. Play queues one burst and returns without waiting for it to sound.
type Output interface {
	Format() Format
	Suspended() bool
	Resume() error
	Suspend()
	Play(samples []int16) error
	Close()
}

// Backends lists the backends compiled for this platform, default first.
func Backends() []string {
	return []string{DefaultBackend, BackendOto, BackendFake}
}

func ValidBackend(name string) bool {
	for _, b := range Backends() {
		if b == name {
			return true
		}
	}
	return false
}

// DefaultConfig returns the output configuration used for a backend.
func DefaultConfig(backend string) OutputConfig {
	channels := 1
	if backend == BackendPulse {
		channels = 2 // match the default sink layout
	}
	return OutputConfig{
		Format:  Format{SampleRate: DefaultSampleRate, Channels: channels},
		Latency: DefaultLatency,
	}
}

func NewContext(backend string) (Context, error) {
	switch backend {
	case "", DefaultBackend:
		return newNativeContext()
	case BackendOto:
		return newOtoContext(), nil
	case BackendFake:
		return NewFakeContext(), nil
	}
	return nil, fmt.Errorf("unknown audio backend %q (use %s)", backend, strings.Join(Backends(), ", "))
}

func (c OutputConfig) withDefaults() OutputConfig {
	if c.Format.SampleRate <= 0 {
		c.Format.SampleRate = DefaultSampleRate
	}
	if c.Format.Channels <= 0 {
		c.Format.Channels = 1
	}
	if c.Latency <= 0 {
		c.Latency = DefaultLatency
	}
	return c
}
