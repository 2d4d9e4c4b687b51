//go:build darwin

package tray

import (
	"github.com/energye/systray"
	"golang.design/x/hotkey/mainthread"

	"hocus/log"
	"hocus/login"
	"hocus/synth"
)

var (
	mPlay       *systray.MenuItem
	mDevices    *systray.MenuItem
	deviceItems []*systray.MenuItem
	deviceReady chan struct{}

	mPresets   *systray.MenuItem
	mSounds    *systray.MenuItem
	soundItems []*systray.MenuItem
)

func Init() <-chan struct{} {
	deviceReady = make(chan struct{})
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func updateIcon(playing, pulse bool) {
	switch {
	case playing && pulse:
		systray.SetIcon(iconPulseHi)
	case playing:
		systray.SetIcon(iconPlayHi)
	default:
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
	}
}

func updatePlayingItem(playing bool) {
	if mPlay == nil {
		return
	}
	if playing {
		mPlay.SetTitle("Stop")
	} else {
		mPlay.SetTitle("Start")
	}
}

func updateTooltip(msg string) {
	systray.SetTooltip(msg)
}

func selectSound(id synth.SoundID) {
	soundMu.Lock()
	defer soundMu.Unlock()
	if id == soundSel || len(soundItems) == 0 {
		return
	}
	soundSel = id
	for i, it := range soundItems {
		if i < len(sounds) && sounds[i].ID == id {
			it.Check()
		} else {
			it.Uncheck()
		}
	}
}

func addDeviceItem(parent *systray.MenuItem, idx int, name string, checked bool) *systray.MenuItem {
	label := deviceDisplayName(name)
	item := parent.AddSubMenuItemCheckbox(label, label, checked)
	item.Click(func() {
		deviceMu.Lock()
		// RefreshDevices may have renamed this slot since the item was built
		currentName := ""
		if idx < len(deviceNames) {
			currentName = deviceNames[idx]
		}
		cb := deviceCb
		deviceMu.Unlock()
		if cb != nil && currentName != "" {
			cb(currentName)
		}
		deviceMu.Lock()
		for _, it := range deviceItems {
			it.Uncheck()
		}
		if idx < len(deviceItems) {
			deviceItems[idx].Check()
		}
		deviceMu.Unlock()
	})
	return item
}

func RefreshDevices(names []string, selected string) {
	if deviceReady == nil {
		return
	}
	<-deviceReady

	deviceMu.Lock()
	defer deviceMu.Unlock()

	deviceNames = names
	deviceSel = selected

	for i, item := range deviceItems {
		if i < len(names) {
			label := deviceDisplayName(names[i])
			item.SetTitle(label)
			item.SetTooltip(names[i])
			item.Show()
			if names[i] == selected {
				item.Check()
			} else {
				item.Uncheck()
			}
		} else {
			item.Hide()
			item.Uncheck()
		}
	}

	for i := len(deviceItems); i < len(names); i++ {
		item := addDeviceItem(mDevices, i, names[i], names[i] == selected)
		deviceItems = append(deviceItems, item)
	}
}

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	stateMu.Lock()
	systray.SetTooltip(status)
	stateMu.Unlock()

	mPlay = systray.AddMenuItem("Start", "Start or stop the metronome")
	mPlay.Click(func() {
		if toggleFn != nil {
			toggleFn()
		}
	})

	systray.AddSeparator()

	mPresets = systray.AddMenuItem("Presets", "Tempo presets")
	presetMu.Lock()
	for i, p := range presets {
		idx := i
		item := mPresets.AddSubMenuItem(presetTitle(p), p.Description)
		item.Click(func() {
			presetMu.Lock()
			pr := presets[idx]
			cb := presetCb
			presetMu.Unlock()
			if cb != nil {
				cb(pr)
			}
		})
	}
	presetMu.Unlock()

	mSounds = systray.AddMenuItem("Sound", "Select click sound")
	soundMu.Lock()
	soundItems = make([]*systray.MenuItem, 0, len(sounds))
	for i, p := range sounds {
		idx := i
		item := mSounds.AddSubMenuItemCheckbox(p.Name, p.Name, p.ID == soundSel)
		item.Click(func() {
			soundMu.Lock()
			id := sounds[idx].ID
			cb := soundCb
			soundMu.Unlock()
			if cb != nil {
				cb(id)
			}
		})
		soundItems = append(soundItems, item)
	}
	soundMu.Unlock()

	mDevices = systray.AddMenuItem("Output Device", "Select output device")
	deviceMu.Lock()
	deviceItems = make([]*systray.MenuItem, 0, len(deviceNames))
	for i, name := range deviceNames {
		item := addDeviceItem(mDevices, i, name, name == deviceSel)
		deviceItems = append(deviceItems, item)
	}
	deviceMu.Unlock()

	systray.AddSeparator()
	mLogin := systray.AddMenuItemCheckbox("Open at Login", "Start hocus in the menu bar when you log in", login.Enabled())
	mLogin.Click(func() {
		if mLogin.Checked() {
			if err := login.Disable(); err != nil {
				log.Warnf("login item: %v", err)
				SetError(err.Error())
				return
			}
			mLogin.Uncheck()
			return
		}
		if err := login.Enable(); err != nil {
			log.Warnf("login item: %v", err)
			SetError(err.Error())
			return
		}
		mLogin.Check()
	})

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit hocus")
	mQuit.Click(func() { Quit() })
	systray.CreateMenu()

	close(deviceReady)
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}
