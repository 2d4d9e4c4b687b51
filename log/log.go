package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	sessionFile *os.File
	logMu       sync.Mutex
	logReady    atomic.Bool
	pid         int
	dir         string
	level       = zerolog.InfoLevel
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: HOCUS_LOG_PATH environment variable
	if envPath := os.Getenv("HOCUS_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// SetLevel sets the minimum level written to the diagnostics log.
// Accepts zerolog level names (debug, info, warn, error).
func SetLevel(name string) error {
	l, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if l == zerolog.NoLevel {
		l = zerolog.InfoLevel
	}
	logMu.Lock()
	level = l
	if logReady.Load() {
		diagLog = diagLog.Level(l)
	}
	logMu.Unlock()
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	sessionPath := filepath.Join(dir, "session_log.txt")
	sessionFile, err = os.OpenFile(sessionPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).Level(level).With().Timestamp().Int("pid", pid).Logger()

	logReady.Store(true)
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	logReady.Store(false)
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if sessionFile != nil {
		sessionFile.Close()
		sessionFile = nil
	}
}

func Debug(msg string) {
	if logReady.Load() {
		diagLog.Debug().Msg(msg)
	}
}

func Debugf(format string, args ...any) {
	if logReady.Load() {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Info(msg string) {
	if logReady.Load() {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady.Load() {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady.Load() {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady.Load() {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady.Load() {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady.Load() {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(backend, device string) {
	if !logReady.Load() {
		return
	}
	diagLog.Info().
		Str("backend", backend).
		Str("device", device).
		Msg("session_start")
}

func PlaybackStart(tempo int, sound string, volume float64) {
	if !logReady.Load() {
		return
	}
	diagLog.Info().
		Int("bpm", tempo).
		Str("sound", sound).
		Float64("volume", volume).
		Msg("playback_start")
}

// PlaybackStop records the end of one play interval in the diagnostics log
// and appends a one-line summary to session_log.txt.
func PlaybackStop(tempo int, sound string, beats uint64, elapsed time.Duration) {
	if !logReady.Load() {
		return
	}
	diagLog.Info().
		Uint64("beats", beats).
		Float64("elapsed_s", elapsed.Seconds()).
		Msg("playback_stop")

	logMu.Lock()
	defer logMu.Unlock()
	if sessionFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%d bpm\t%s\t%d beats\t%s\n",
		time.Now().Format("2006-01-02 15:04:05"), pid, tempo, sound, beats, elapsed.Round(time.Second))
	sessionFile.WriteString(line)
}

func TempoChange(from, to int) {
	if !logReady.Load() {
		return
	}
	diagLog.Info().Int("from", from).Int("to", to).Msg("tempo_change")
}

func SoundChange(from, to string) {
	if !logReady.Load() {
		return
	}
	diagLog.Info().Str("from", from).Str("to", to).Msg("sound_change")
}

func BeatSkipped(reason error) {
	if !logReady.Load() {
		return
	}
	diagLog.Warn().Err(reason).Msg("beat_skipped")
}

func SessionEnd(plays int, beats uint64) {
	if !logReady.Load() {
		return
	}
	diagLog.Info().
		Int("plays", plays).
		Uint64("beats", beats).
		Msg("session_end")
}
