package main

import (
	"slices"
	"sync"
	"time"

	"hocus/audio"
	"hocus/log"
	"hocus/synth"
	"hocus/tray"
)

// outputs owns the live audio output behind the synth engine and swaps it
// when the user picks another device or the selected one disappears.
type outputs struct {
	ctx    audio.Context
	config audio.OutputConfig
	engine *synth.Engine

	mu        sync.Mutex
	selected  *audio.DeviceInfo
	preferred string // remembered choice, reconnected when it reappears
}

func newOutputs(ctx audio.Context, config audio.OutputConfig, engine *synth.Engine) *outputs {
	return &outputs{ctx: ctx, config: config, engine: engine}
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "out: " + name + suffix + " (ctrl+g)"
}

// open makes dev the active output. On failure the previous output stays.
func (o *outputs) open(dev *audio.DeviceInfo) error {
	out, err := o.ctx.NewOutput(dev, o.config)
	if err != nil {
		return err
	}
	if old := o.engine.SetOutput(out); old != nil {
		old.Close()
	}

	o.mu.Lock()
	o.selected = dev
	if dev != nil {
		o.preferred = dev.Name
	}
	o.mu.Unlock()

	sink.DeviceLine(deviceLineText(dev))
	sink.BluetoothWarning(dev != nil && audio.IsBluetooth(dev.Name))
	return nil
}

func (o *outputs) apply(dev *audio.DeviceInfo) {
	name := "system default"
	if dev != nil {
		name = dev.Name
	}
	log.Info("device_switch: " + name)
	if err := o.open(dev); err != nil {
		log.Errorf("output device reinit error: %v", err)
		sink.Error("could not open " + name)
		tray.SetError("could not open " + name)
	}
}

func (o *outputs) switchByName(name string) {
	dev, err := audio.FindDevice(o.ctx, name)
	if err != nil {
		log.Warnf("device enumeration failed: %v", err)
		return
	}
	if dev == nil {
		log.Warnf("device not found: %s", name)
		return
	}
	o.apply(dev)
}

// choose runs the interactive picker with the terminal released from the TUI.
func (o *outputs) choose() {
	if tuiProgram != nil {
		tuiProgram.ReleaseTerminal()
	}
	dev, err := audio.SelectDevice(o.ctx)
	if tuiProgram != nil {
		tuiProgram.RestoreTerminal()
	}
	if err != nil {
		log.Warnf("device selection failed: %v", err)
		return
	}
	if dev != nil {
		o.apply(dev)
	}
}

func (o *outputs) selectedName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.selected == nil {
		return ""
	}
	return o.selected.Name
}

func (o *outputs) names() []string {
	devices, err := o.ctx.Devices()
	if err != nil {
		return nil
	}
	names := make([]string, len(devices))
	for i := range devices {
		names[i] = devices[i].Name
	}
	return names
}

// watch polls for hotplug changes: a vanished device falls back to the
// system default and the preferred one is reconnected when it returns.
func (o *outputs) watch(interval time.Duration) {
	var last []string
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		devices, err := o.ctx.Devices()
		if err != nil {
			continue
		}
		names := make([]string, len(devices))
		for i := range devices {
			names[i] = devices[i].Name
		}
		if slices.Equal(last, names) {
			continue
		}
		last = names

		selName := o.selectedName()
		o.mu.Lock()
		preferred := o.preferred
		o.mu.Unlock()

		if selName != "" && !slices.Contains(names, selName) {
			log.Info("device_disconnected: " + selName)
			o.apply(nil)
			o.mu.Lock()
			o.preferred = preferred
			o.mu.Unlock()
			selName = ""
		} else if selName == "" && preferred != "" && slices.Contains(names, preferred) {
			log.Info("device_reconnected: " + preferred)
			o.switchByName(preferred)
			selName = o.selectedName()
		}
		tray.RefreshDevices(names, selName)
	}
}
