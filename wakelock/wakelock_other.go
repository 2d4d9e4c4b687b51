//go:build !linux && !darwin

package wakelock

func New() Inhibitor { return unsupported{} }
