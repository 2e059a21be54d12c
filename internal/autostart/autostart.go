// Package autostart registers the application to start with the user session.
package autostart

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned on systems without a known autostart mechanism.
var ErrUnsupported = errors.New("autostart is not supported on this system")

// AppName names the registry value, desktop entry and launch agent.
const AppName = "PowerKey"

// Autostart toggles start-with-system for the running executable.
type Autostart interface {
	// IsEnabled reports whether an entry exists that starts this executable.
	IsEnabled() bool
	Enable() error
	// Disable succeeds when no entry exists.
	Disable() error
}

// executablePath is the resolved path of the running binary.
func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
