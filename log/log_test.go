package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir(""); SetLevel("info") })
	return tmp
}

func readDiag(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("HOCUS_LOG_PATH", "/tmp/hocus-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/hocus-env-log" {
		t.Errorf("got %q, want /tmp/hocus-env-log", got)
	}
}

func TestResolveDirFlagBeatsEnv(t *testing.T) {
	t.Setenv("HOCUS_LOG_PATH", "/tmp/hocus-env-log")
	got, err := ResolveDir("/tmp/flag-log")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/flag-log" {
		t.Errorf("got %q, want /tmp/flag-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("HOCUS_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected non-empty default directory")
	}
}

func TestDefaultDirPerOS(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }
	home := filepath.Join("home", "u")

	tests := []struct {
		goos string
		env  map[string]string
		want string
	}{
		{"darwin", nil, filepath.Join(home, "Library", "Logs", "hocus")},
		{"linux", nil, filepath.Join(home, ".config", "hocus", "logs")},
		{"linux", map[string]string{"XDG_CONFIG_HOME": "xdg"}, filepath.Join("xdg", "hocus", "logs")},
		{"windows", nil, filepath.Join(home, "AppData", "Local", "hocus", "logs")},
		{"windows", map[string]string{"LOCALAPPDATA": "lad"}, filepath.Join("lad", "hocus", "logs")},
	}
	for _, tt := range tests {
		clear(env)
		for k, v := range tt.env {
			env[k] = v
		}
		if got := defaultDir(tt.goos, home, getenv); got != tt.want {
			t.Errorf("defaultDir(%s, %v) = %q, want %q", tt.goos, tt.env, got, tt.want)
		}
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diagnostics_log.txt", "session_log.txt"} {
		path := filepath.Join(tmp, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestHelpersNoopBeforeInit(t *testing.T) {
	Close()
	// must not panic
	Info("x")
	Warnf("%d", 1)
	BeatSkipped(errors.New("x"))
	PlaybackStop(80, "click", 3, time.Second)
}

func TestPlaybackStopWritesSessionLine(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	PlaybackStop(120, "wood", 42, 21*time.Second)

	data, err := os.ReadFile(filepath.Join(tmp, "session_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, want := range []string{"120 bpm", "wood", "42 beats", "21s"} {
		if !strings.Contains(line, want) {
			t.Errorf("session_log.txt missing %q, got: %q", want, line)
		}
	}
	if !strings.Contains(readDiag(t, tmp), "playback_stop") {
		t.Error("diagnostics log missing playback_stop")
	}
}

func TestEventsWritten(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	SessionStart("fake", "default")
	PlaybackStart(80, "click", 0.5)
	TempoChange(80, 120)
	SoundChange("click", "tick")
	BeatSkipped(errors.New("device gone"))
	SessionEnd(1, 10)

	diag := readDiag(t, tmp)
	for _, want := range []string{
		"session_start", "playback_start", "bpm=80", "tempo_change",
		"sound_change", "beat_skipped", "device gone", "session_end",
	} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostics log missing %q", want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	tmp := setupLogDir(t)

	if err := SetLevel("warn"); err != nil {
		t.Fatal(err)
	}
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Info("hidden-info")
	Warn("shown-warn")

	diag := readDiag(t, tmp)
	if strings.Contains(diag, "hidden-info") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(diag, "shown-warn") {
		t.Error("warn line missing")
	}

	if err := SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
