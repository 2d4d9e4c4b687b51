package main

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hocus/hotkey"
	"hocus/metronome"
	"hocus/synth"
)

// TUI message types
type SessionMsg struct{ Session metronome.Session }
type DeviceLineMsg struct{ Text string }     // output device name
type BluetoothWarningMsg struct{ IsBT bool } // selected output adds latency
type ErrorMsg struct{ Text string }          // shown until the next key press
type HotkeyHelpMsg struct{ Enabled bool }    // global shortcut registered
type flashDoneMsg struct{ beat uint64 }

// controls is the subset of the controller the TUI drives.
type controls interface {
	TogglePlay()
	SetTempo(bpm int)
	SetSound(id synth.SoundID) error
	SetVolume(v float64)
	ApplyPreset(p metronome.Preset)
}

const (
	tempoStep   = 1
	tempoJump   = 10
	volumeStep  = 0.1
	volumeSteps = 10 // per unit, 1/volumeStep
	flashTime   = 90 * time.Millisecond
)

type tuiModel struct {
	ctl     controls
	presets []metronome.Preset

	s             metronome.Session
	flash         bool // beat just fired
	width, height int
	deviceLine    string
	bluetooth     bool
	errText       string
	hotkeyHelp    bool
}

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

// Pre-computed pixel styles to avoid allocations in render loop
var (
	pixelColorsOn  = []string{"", "231", "156", "120", "84", "48", "35", "29", "23", "236"}
	pixelColorsOff = []string{"", "250", "247", "244", "241", "239", "238", "237", "236", "235"}
	pixelStylesOn  [10]lipgloss.Style
	pixelStylesOff [10]lipgloss.Style
	pixelBgOn      [10][10]lipgloss.Style
	pixelBgOff     [10][10]lipgloss.Style
)

var (
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

const pulsePanelWidth = 31

func init() {
	fill := func(colors []string, styles *[10]lipgloss.Style, bg *[10][10]lipgloss.Style) {
		for i, c := range colors {
			if c != "" {
				styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
			}
		}
		for i, fg := range colors {
			for j, b := range colors {
				if fg != "" && b != "" {
					bg[i][j] = lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(b))
				}
			}
		}
	}
	fill(pixelColorsOn, &pixelStylesOn, &pixelBgOn)
	fill(pixelColorsOff, &pixelStylesOff, &pixelBgOff)
}

func newTUIModel(ctl controls, initial metronome.Session) tuiModel {
	return tuiModel{ctl: ctl, presets: metronome.DefaultPresets(), s: initial}
}

func NewTUIProgram(ctl controls, initial metronome.Session) *tea.Program {
	return tea.NewProgram(newTUIModel(ctl, initial), tea.WithAltScreen())
}

// tuiSend delivers msg to the TUI if it is running. Blocks until the
// program's event loop accepts it.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return nil
}

// run executes a controller command off the event loop. Stopping waits for
// an in-flight beat, and that beat's notification is delivered through this
// same loop.
func (m tuiModel) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionMsg:
		beat := msg.Session.Running && msg.Session.BeatCount != m.s.BeatCount
		m.s = msg.Session
		if !m.s.Running {
			m.flash = false
		}
		if beat {
			m.flash = true
			n := m.s.BeatCount
			return m, tea.Tick(flashTime, func(time.Time) tea.Msg { return flashDoneMsg{beat: n} })
		}

	case flashDoneMsg:
		if msg.beat == m.s.BeatCount {
			m.flash = false
		}

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case BluetoothWarningMsg:
		m.bluetooth = msg.IsBT

	case ErrorMsg:
		m.errText = msg.Text

	case HotkeyHelpMsg:
		m.hotkeyHelp = msg.Enabled
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctl == nil {
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	m.errText = ""
	s := m.s
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ", "enter":
		return m, m.run(m.ctl.TogglePlay)
	case "up", "k":
		return m, m.run(func() { m.ctl.SetTempo(s.Tempo + tempoStep) })
	case "down", "j":
		return m, m.run(func() { m.ctl.SetTempo(s.Tempo - tempoStep) })
	case "right", "pgup":
		return m, m.run(func() { m.ctl.SetTempo(s.Tempo + tempoJump) })
	case "left", "pgdown":
		return m, m.run(func() { m.ctl.SetTempo(s.Tempo - tempoJump) })
	case "s":
		return m, m.run(func() { m.ctl.SetSound(synth.Next(s.Sound)) })
	case "+", "=":
		return m, m.run(func() { m.ctl.SetVolume(stepVolume(s.Volume, volumeStep)) })
	case "-", "_":
		return m, m.run(func() { m.ctl.SetVolume(stepVolume(s.Volume, -volumeStep)) })
	case "ctrl+g":
		select {
		case deviceSelectChan <- struct{}{}:
		default:
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.presets) {
				p := m.presets[i]
				return m, m.run(func() { m.ctl.ApplyPreset(p) })
			}
		}
	}
	return m, nil
}

// stepVolume moves v by delta and snaps to the step grid.
func stepVolume(v, delta float64) float64 {
	return metronome.ClampVolume(math.Round((v+delta)*volumeSteps) / volumeSteps)
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	pulse := renderPulse(m.s.Running && m.s.Pulse(), m.s.Running && m.flash)

	var info []string
	if m.s.Running {
		info = append(info, playingStyle.Render("● PLAYING"))
	} else {
		info = append(info, stoppedStyle.Render("○ STOPPED"))
	}
	info = append(info, valueStyle.Render(fmt.Sprintf("%d bpm", m.s.Tempo)))
	info = append(info, dimStyle.Render(fmt.Sprintf("sound: %s   volume: %d%%", soundName(m.s.Sound), m.s.VolumePercent())))
	if m.s.Running || m.s.BeatCount > 0 {
		info = append(info, dimStyle.Render(fmt.Sprintf("beats: %d", m.s.BeatCount)))
	}
	if m.deviceLine != "" {
		info = append(info, dimStyle.Render(m.deviceLine))
	}
	if m.bluetooth {
		info = append(info, warnStyle.Render("⚠ Bluetooth output: clicks will lag the pulse"))
	}
	if m.errText != "" {
		info = append(info, warnStyle.Render(m.errText))
	}

	info = append(info, "")
	info = append(info, helpKeyStyle.Render("space")+helpStyle.Render(" start/stop  ")+
		helpKeyStyle.Render("↑/↓ ←/→")+helpStyle.Render(" tempo"))
	info = append(info, helpKeyStyle.Render("s")+helpStyle.Render(" sound  ")+
		helpKeyStyle.Render("+/-")+helpStyle.Render(" volume  ")+
		helpKeyStyle.Render("ctrl+g")+helpStyle.Render(" output"))
	var presets []string
	for i, p := range m.presets {
		presets = append(presets, helpKeyStyle.Render(fmt.Sprintf("%d", i+1))+helpStyle.Render(fmt.Sprintf(" %s %d", firstWord(p.Name), p.Tempo)))
	}
	if len(presets) > 0 {
		info = append(info, strings.Join(presets, helpStyle.Render("  ")))
	}
	if m.hotkeyHelp {
		info = append(info, helpKeyStyle.Render(hotkey.Combo)+helpStyle.Render(" tap start/stop, hold next preset"))
	}
	info = append(info, helpStyle.Render("hocus "+version))

	left := lipgloss.NewStyle().Width(pulsePanelWidth).Render(pulse)
	right := lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(info, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func soundName(id synth.SoundID) string {
	if p, err := synth.Lookup(id); err == nil {
		return p.Name
	}
	return string(id)
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return strings.ToLower(s[:i])
	}
	return strings.ToLower(s)
}

// renderPulse draws the beat indicator as half-block pixel art. on selects
// the lit palette; flash widens the disc for the moment after a beat.
func renderPulse(on, flash bool) string {
	const charsW = 30
	const charsH = 8
	const pixW = charsW
	const pixH = charsH * 2

	centerX := float64(pixW) / 2
	centerY := float64(pixH) / 2

	grow := 0.0
	if flash {
		grow = 1.2
	}

	// terminal cells are about twice as tall as wide
	rings := []struct {
		radius   float64
		colorIdx int
	}{
		{1.0, 1},
		{2.0, 2},
		{3.0, 3},
		{4.0, 4},
		{5.0, 5},
		{5.8, 6},
		{6.5, 7},
		{7.2, 8},
	}

	pixels := make([][]int, pixH)
	for y := range pixels {
		pixels[y] = make([]int, pixW)
		for x := 0; x < pixW; x++ {
			dx := (float64(x) - centerX + 0.5) / 2
			dy := float64(y) - centerY + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)
			for _, r := range rings {
				if dist < r.radius+grow {
					pixels[y][x] = r.colorIdx
					break
				}
			}
		}
	}

	styles, bgStyles := &pixelStylesOff, &pixelBgOff
	if on {
		styles, bgStyles = &pixelStylesOn, &pixelBgOn
	}

	var result strings.Builder
	for cy := 0; cy < charsH; cy++ {
		for cx := 0; cx < charsW; cx++ {
			top := pixels[cy*2][cx]
			bot := pixels[cy*2+1][cx]
			switch {
			case top == 0 && bot == 0:
				result.WriteString(" ")
			case top == bot:
				result.WriteString(styles[top].Render("█"))
			case bot == 0:
				result.WriteString(styles[top].Render("▀"))
			case top == 0:
				result.WriteString(styles[bot].Render("▄"))
			default:
				result.WriteString(bgStyles[top][bot].Render("▀"))
			}
		}
		result.WriteString("\n")
	}
	return result.String()
}
