package main

import (
	"flag"
	"io"
	"testing"
)

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("HOCUS_TEMPO", "90")
	t.Setenv("HOCUS_SOUND", "beep")
	t.Setenv("HOCUS_WAKELOCK", "true")

	fs := flag.NewFlagSet("hocus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, cfg, err := loadConfig(fs, []string{"-tempo", "150", "-nowake", "-volume", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 150 {
		t.Errorf("tempo = %d, want flag value 150", cfg.Tempo)
	}
	if cfg.Sound != "beep" {
		t.Errorf("sound = %q, want env value beep", cfg.Sound)
	}
	if cfg.WakeLock {
		t.Error("-nowake should disable the wake lock")
	}
	if cfg.Volume != 1 {
		t.Errorf("volume = %v, want clamped 1", cfg.Volume)
	}
}

func TestFlagDefaultsDoNotMaskEnvironment(t *testing.T) {
	t.Setenv("HOCUS_TEMPO", "90")
	t.Setenv("HOCUS_VOLUME", "0.2")

	fs := flag.NewFlagSet("hocus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, cfg, err := loadConfig(fs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 90 || cfg.Volume != 0.2 {
		t.Fatalf("tempo = %d volume = %v, want env values 90 and 0.2", cfg.Tempo, cfg.Volume)
	}
}

func TestLoadConfigRejectsUnknownSound(t *testing.T) {
	fs := flag.NewFlagSet("hocus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, _, err := loadConfig(fs, []string{"-sound", "cowbell"}); err == nil {
		t.Fatal("expected error for unknown sound")
	}
}

func TestArgValue(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-logpath", "/tmp/x"}, "/tmp/x"},
		{[]string{"--logpath", "/tmp/y", "-tui=false"}, "/tmp/y"},
		{[]string{"-tempo", "90", "-logpath=./logs"}, "./logs"},
		{[]string{"logpath", "/tmp/z"}, ""},
		{[]string{"-logpath"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := argValue(tt.args, "logpath"); got != tt.want {
			t.Errorf("argValue(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestHasFlag(t *testing.T) {
	if !hasFlag([]string{"-tempo", "90", "-gui"}, "gui") {
		t.Error("-gui not found")
	}
	if !hasFlag([]string{"--gui=true"}, "gui") {
		t.Error("--gui=true not found")
	}
	if hasFlag([]string{"-gui=false", "gui"}, "gui") {
		t.Error("-gui=false should not count")
	}
}
