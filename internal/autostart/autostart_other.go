//go:build !windows && !linux && !darwin

package autostart

type unsupported struct{}

// New returns a handler whose every change fails with ErrUnsupported.
func New() Autostart { return unsupported{} }

func (unsupported) IsEnabled() bool { return false }
func (unsupported) Enable() error   { return ErrUnsupported }
func (unsupported) Disable() error  { return ErrUnsupported }
