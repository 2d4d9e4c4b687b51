//go:build !darwin

package tray

import "hocus/synth"

func Init() <-chan struct{}                          { return quitCh }
func RefreshDevices(names []string, selected string) {}
func updateIcon(playing, pulse bool)                 {}
func updatePlayingItem(playing bool)                 {}
func updateTooltip(string)                           {}
func selectSound(synth.SoundID)                      {}
