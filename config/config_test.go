package config

import (
	"testing"
	"time"

	"hocus/audio"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOCUS_TEMPO", "HOCUS_VOLUME", "HOCUS_SOUND", "HOCUS_BACKEND", "HOCUS_DEVICE",
		"HOCUS_LATENCY_MS", "HOCUS_WAKELOCK", "HOCUS_HOTKEY", "HOCUS_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	if c.Tempo != 80 || c.Volume != 0.5 || c.Sound != "click" {
		t.Errorf("session defaults = %d/%v/%s", c.Tempo, c.Volume, c.Sound)
	}
	if c.Backend != audio.DefaultBackend || c.Device != "" || c.Latency != 50*time.Millisecond {
		t.Errorf("audio defaults = %s/%q/%v", c.Backend, c.Device, c.Latency)
	}
	if !c.WakeLock || c.Hotkey || c.LogLevel != "info" {
		t.Errorf("behavior defaults = %v/%v/%s", c.WakeLock, c.Hotkey, c.LogLevel)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOCUS_TEMPO", "132")
	t.Setenv("HOCUS_VOLUME", "0.8")
	t.Setenv("HOCUS_SOUND", "Wood Block")
	t.Setenv("HOCUS_BACKEND", "fake")
	t.Setenv("HOCUS_DEVICE", "USB Audio")
	t.Setenv("HOCUS_LATENCY_MS", "20")
	t.Setenv("HOCUS_WAKELOCK", "false")
	t.Setenv("HOCUS_HOTKEY", "1")
	t.Setenv("HOCUS_LOG_LEVEL", "DEBUG")

	c := Load()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Tempo != 132 || c.Volume != 0.8 || c.SoundID() != "wood" {
		t.Errorf("session = %d/%v/%s", c.Tempo, c.Volume, c.Sound)
	}
	if c.Backend != "fake" || c.Device != "USB Audio" || c.Latency != 20*time.Millisecond {
		t.Errorf("audio = %s/%q/%v", c.Backend, c.Device, c.Latency)
	}
	if c.WakeLock || !c.Hotkey || c.LogLevel != "debug" {
		t.Errorf("behavior = %v/%v/%s", c.WakeLock, c.Hotkey, c.LogLevel)
	}
}

func TestLoadIgnoresMalformed(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOCUS_TEMPO", "fast")
	t.Setenv("HOCUS_VOLUME", "loud")
	t.Setenv("HOCUS_WAKELOCK", "maybe")
	c := Load()
	if c.Tempo != 80 || c.Volume != 0.5 || !c.WakeLock {
		t.Errorf("malformed values not ignored: %+v", c)
	}
}

func TestValidateClamps(t *testing.T) {
	c := Config{Tempo: 400, Volume: -1, Sound: "tick", Backend: "fake", LogLevel: "info", Latency: time.Hour}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Tempo != 200 || c.Volume != 0 || c.Latency != time.Second {
		t.Errorf("clamped = %d/%v/%v", c.Tempo, c.Volume, c.Latency)
	}
}

func TestValidateRejects(t *testing.T) {
	base := Config{Tempo: 80, Volume: 0.5, Sound: "click", Backend: "fake", LogLevel: "info"}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sound", func(c *Config) { c.Sound = "cowbell" }},
		{"backend", func(c *Config) { c.Backend = "jack" }},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOutputConfig(t *testing.T) {
	c := Config{Backend: audio.BackendFake, Latency: 30 * time.Millisecond}
	oc := c.OutputConfig()
	if oc.Latency != 30*time.Millisecond || oc.Format.SampleRate != audio.DefaultSampleRate {
		t.Errorf("OutputConfig = %+v", oc)
	}
}
