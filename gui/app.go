//go:build gui

package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/glfw/v3.3/glfw"

	"hocus/metronome"
	"hocus/synth"
)

// Controls is the controller surface the panel drives.
type Controls interface {
	TogglePlay()
	SetTempo(bpm int)
	SetSound(id synth.SoundID) error
	SetVolume(v float64)
	ApplyPreset(p metronome.Preset)
	Snapshot() metronome.Session
}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	pulse   *PulseWidget
	onReady func()
	posX    int
	posY    int

	playBtn    *widget.Button
	tempoLabel *widget.Label
	tempo      *widget.Slider
	volume     *widget.Slider
	sound      *widget.Select
	presetBox  *fyne.Container
	deviceLbl  *widget.Label
	statusLbl  *widget.Label
	playItem   *fyne.MenuItem
	trayMenu   *fyne.Menu
	syncing    bool // set while widgets are updated from a snapshot
	soundNames map[string]synth.SoundID

	mu  sync.Mutex
	ctl Controls
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.hocus.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		a.playItem = fyne.NewMenuItem("Start", func() { a.toggle() })
		a.trayMenu = fyne.NewMenu("hocus",
			a.playItem,
			fyne.NewMenuItem("Show", func() { a.Show() }),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(a.trayMenu)
		desk.SetSystemTrayIcon(trayIcon())
	}

	// Get primary monitor work area for positioning
	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	a.window = a.fyneApp.NewWindow("hocus")
	a.window.SetContent(a.build())
	a.window.SetFixedSize(true)
	a.window.SetCloseIntercept(func() { a.window.Hide() })

	size := a.window.Content().MinSize()
	a.window.Resize(size)

	// bottom-right corner, clear of the dock
	a.posX = screenW - int(size.Width) - 40
	a.posY = screenH - int(size.Height) - 60

	go a.onReady()

	a.Show()
	a.fyneApp.Run()
	return nil
}

func (a *App) build() fyne.CanvasObject {
	a.pulse = NewPulseWidget()

	a.playBtn = widget.NewButton("Start", func() { a.toggle() })
	a.playBtn.Importance = widget.HighImportance

	a.tempoLabel = widget.NewLabel(tempoText(metronome.DefaultTempo))
	a.tempoLabel.TextStyle = fyne.TextStyle{Bold: true}
	a.tempo = widget.NewSlider(metronome.MinTempo, metronome.MaxTempo)
	a.tempo.Step = 1
	a.tempo.SetValue(metronome.DefaultTempo)
	a.tempo.OnChanged = func(v float64) {
		a.tempoLabel.SetText(tempoText(int(v)))
	}
	a.tempo.OnChangeEnded = func(v float64) {
		if ctl := a.controls(); ctl != nil && !a.syncing {
			ctl.SetTempo(int(v))
		}
	}

	a.volume = widget.NewSlider(0, 100)
	a.volume.Step = 1
	a.volume.SetValue(metronome.DefaultVolume * 100)
	a.volume.OnChanged = func(v float64) {
		if ctl := a.controls(); ctl != nil && !a.syncing {
			ctl.SetVolume(v / 100)
		}
	}

	a.soundNames = make(map[string]synth.SoundID)
	var names []string
	for _, p := range synth.Profiles() {
		names = append(names, p.Name)
		a.soundNames[p.Name] = p.ID
	}
	a.sound = widget.NewSelect(names, func(name string) {
		ctl := a.controls()
		if ctl == nil || a.syncing {
			return
		}
		if err := ctl.SetSound(a.soundNames[name]); err != nil {
			a.Error(err.Error())
		}
	})

	a.presetBox = container.NewHBox()
	a.deviceLbl = widget.NewLabel("")
	a.statusLbl = widget.NewLabel("")
	a.statusLbl.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Tempo", a.tempo),
		widget.NewFormItem("Volume", a.volume),
		widget.NewFormItem("Sound", a.sound),
	)

	return container.NewVBox(
		container.NewCenter(a.pulse),
		container.NewCenter(a.tempoLabel),
		a.playBtn,
		form,
		a.presetBox,
		a.deviceLbl,
		a.statusLbl,
	)
}

func tempoText(bpm int) string { return fmt.Sprintf("%d bpm", bpm) }

func (a *App) controls() Controls {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctl
}

func (a *App) toggle() {
	if ctl := a.controls(); ctl != nil {
		ctl.TogglePlay()
	}
}

// Bind connects the panel to the controller and fills the preset buttons.
func (a *App) Bind(ctl Controls, presets []metronome.Preset) {
	a.mu.Lock()
	a.ctl = ctl
	a.mu.Unlock()

	fyne.Do(func() {
		a.presetBox.RemoveAll()
		for _, p := range presets {
			a.presetBox.Add(widget.NewButton(fmt.Sprintf("%s %d", p.Name, p.Tempo), func() {
				ctl.ApplyPreset(p)
			}))
		}
		a.window.Resize(a.window.Content().MinSize())
	})
	a.SessionChanged(ctl.Snapshot())
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
		}
		a.window.Show()
	})
}

// EventSink implementation

func (a *App) SessionChanged(s metronome.Session) {
	a.pulse.SetBeat(s.Running, s.Pulse(), s.BeatCount)
	fyne.Do(func() {
		a.syncing = true
		defer func() { a.syncing = false }()

		label := "Start"
		if s.Running {
			label = "Stop"
		}
		if a.playBtn.Text != label {
			a.playBtn.SetText(label)
			if a.playItem != nil {
				a.playItem.Label = label
				a.trayMenu.Refresh()
			}
		}
		if int(a.tempo.Value) != s.Tempo {
			a.tempo.SetValue(float64(s.Tempo))
		}
		a.tempoLabel.SetText(tempoText(s.Tempo))
		if int(a.volume.Value) != s.VolumePercent() {
			a.volume.SetValue(float64(s.VolumePercent()))
		}
		if p, err := synth.Lookup(s.Sound); err == nil && a.sound.Selected != p.Name {
			a.sound.SetSelected(p.Name)
		}
	})
}

func (a *App) DeviceLine(text string) {
	fyne.Do(func() { a.deviceLbl.SetText(text) })
}

func (a *App) BluetoothWarning(isBT bool) {
	msg := ""
	if isBT {
		msg = "⚠ Bluetooth output: clicks will lag the pulse"
	}
	fyne.Do(func() { a.statusLbl.SetText(msg) })
}

func (a *App) Error(text string) {
	fyne.Do(func() { a.statusLbl.SetText(text) })
}
