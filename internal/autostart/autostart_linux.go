//go:build linux

package autostart

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LinuxAutostart implements Autostart for Linux using XDG autostart
type LinuxAutostart struct {
	configHome string
	exe        string
}

// New creates a new autostart handler for Linux
func New() Autostart {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		home, _ := os.UserHomeDir()
		config = filepath.Join(home, ".config")
	}
	exe, _ := executablePath()
	return &LinuxAutostart{configHome: config, exe: exe}
}

func (a *LinuxAutostart) autostartDir() string {
	return filepath.Join(a.configHome, "autostart")
}

func (a *LinuxAutostart) desktopFilePath() string {
	return filepath.Join(a.autostartDir(), "powerkey.desktop")
}

func (a *LinuxAutostart) IsEnabled() bool {
	data, err := os.ReadFile(a.desktopFilePath())
	if err != nil {
		return false
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if exec, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "Exec="); ok {
			return strings.Trim(exec, `"`) == a.exe
		}
	}
	return false
}

func (a *LinuxAutostart) Enable() error {
	if a.exe == "" {
		return fmt.Errorf("cannot determine executable path")
	}
	if err := os.MkdirAll(a.autostartDir(), 0o755); err != nil {
		return err
	}

	desktopEntry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Function keys as application launchers
Exec=%s
Icon=input-keyboard
Terminal=false
Categories=Utility;
X-GNOME-Autostart-enabled=true
`, AppName, a.exe)

	return os.WriteFile(a.desktopFilePath(), []byte(desktopEntry), 0o644)
}

func (a *LinuxAutostart) Disable() error {
	err := os.Remove(a.desktopFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
