package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hocus/audio"
	"hocus/metronome"
	"hocus/synth"
)

// Config holds runtime settings. Load reads the environment; command-line
// flags override individual fields afterwards.
type Config struct {
	// Session
	Tempo  int
	Volume float64
	Sound  string

	// Audio output
	Backend string
	Device  string        // output device name, empty for the system default
	Latency time.Duration // output buffer target

	// Behavior
	WakeLock bool
	Hotkey   bool
	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Tempo:  envInt("HOCUS_TEMPO", metronome.DefaultTempo),
		Volume: envFloat("HOCUS_VOLUME", metronome.DefaultVolume),
		Sound:  envStr("HOCUS_SOUND", string(synth.DefaultSound)),

		Backend: envStr("HOCUS_BACKEND", audio.DefaultBackend),
		Device:  envStr("HOCUS_DEVICE", ""),
		Latency: time.Duration(envInt("HOCUS_LATENCY_MS", int(audio.DefaultLatency/time.Millisecond))) * time.Millisecond,

		WakeLock: envBool("HOCUS_WAKELOCK", true),
		Hotkey:   envBool("HOCUS_HOTKEY", false),
		LogLevel: envStr("HOCUS_LOG_LEVEL", "info"),
	}
}

// Validate clamps tempo, volume and latency into range and rejects names
// that do not resolve.
func (c *Config) Validate() error {
	c.Tempo = metronome.ClampTempo(c.Tempo)
	c.Volume = metronome.ClampVolume(c.Volume)
	c.Latency = min(max(c.Latency, 5*time.Millisecond), time.Second)

	id, err := synth.ParseSoundID(c.Sound)
	if err != nil {
		return fmt.Errorf("sound: %w", err)
	}
	c.Sound = string(id)

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if !audio.ValidBackend(c.Backend) {
		return fmt.Errorf("unknown audio backend %q (use %s)", c.Backend, strings.Join(audio.Backends(), ", "))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return fmt.Errorf("unknown log level %q (use debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

// SoundID returns the validated sound.
func (c Config) SoundID() synth.SoundID { return synth.SoundID(c.Sound) }

// OutputConfig is the audio output configuration for the selected backend.
func (c Config) OutputConfig() audio.OutputConfig {
	oc := audio.DefaultConfig(c.Backend)
	oc.Latency = c.Latency
	return oc
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
