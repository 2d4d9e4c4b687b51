package main

import "hocus/metronome"

// EventSink abstracts the display layer so both the Bubble Tea TUI
// and the fyne panel receive the same metronome events.
type EventSink interface {
	SessionChanged(s metronome.Session)
	DeviceLine(text string)
	BluetoothWarning(isBT bool)
	Error(text string)
}

// tuiSink forwards events to the running TUI program, if any.
type tuiSink struct{}

func (tuiSink) SessionChanged(s metronome.Session) { tuiSend(SessionMsg{Session: s}) }
func (tuiSink) DeviceLine(text string)             { tuiSend(DeviceLineMsg{Text: text}) }
func (tuiSink) BluetoothWarning(isBT bool)         { tuiSend(BluetoothWarningMsg{IsBT: isBT}) }
func (tuiSink) Error(text string)                  { tuiSend(ErrorMsg{Text: text}) }
