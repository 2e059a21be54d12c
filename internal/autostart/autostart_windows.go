//go:build windows

package autostart

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// WindowsAutostart implements Autostart for Windows using the HKCU Run key.
type WindowsAutostart struct{}

// New creates a new autostart handler for Windows
func New() Autostart {
	return &WindowsAutostart{}
}

func (a *WindowsAutostart) IsEnabled() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	value, _, err := k.GetStringValue(AppName)
	if err != nil {
		return false
	}
	exe, err := executablePath()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(exe))
}

func (a *WindowsAutostart) Enable() error {
	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("cannot determine executable path: %w", err)
	}
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open Run key: %w", err)
	}
	defer k.Close()
	return k.SetStringValue(AppName, `"`+exe+`"`)
}

func (a *WindowsAutostart) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open Run key: %w", err)
	}
	defer k.Close()
	if err := k.DeleteValue(AppName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}
