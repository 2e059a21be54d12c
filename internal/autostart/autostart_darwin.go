//go:build darwin

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const launchAgentLabel = "com.powerkey.app"

// DarwinAutostart implements Autostart for macOS using LaunchAgent
type DarwinAutostart struct{}

// New creates a new autostart handler for macOS
func New() Autostart {
	return &DarwinAutostart{}
}

func (a *DarwinAutostart) launchAgentPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", launchAgentLabel+".plist")
}

func (a *DarwinAutostart) appPath() string {
	exe, _ := executablePath()
	// exe will be like /Applications/PowerKey.app/Contents/MacOS/powerkey
	if idx := strings.Index(exe, ".app/"); idx != -1 {
		return exe[:idx+4]
	}
	return exe
}

func (a *DarwinAutostart) IsEnabled() bool {
	data, err := os.ReadFile(a.launchAgentPath())
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "<string>"+a.appPath()+"</string>")
}

func (a *DarwinAutostart) Enable() error {
	appPath := a.appPath()
	args := fmt.Sprintf("        <string>%s</string>", appPath)
	if strings.HasSuffix(appPath, ".app") {
		args = fmt.Sprintf("        <string>/usr/bin/open</string>\n        <string>-a</string>\n        <string>%s</string>", appPath)
	}

	plist := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>`, launchAgentLabel, args)

	if err := os.MkdirAll(filepath.Dir(a.launchAgentPath()), 0o755); err != nil {
		return err
	}
	return os.WriteFile(a.launchAgentPath(), []byte(plist), 0o644)
}

func (a *DarwinAutostart) Disable() error {
	err := os.Remove(a.launchAgentPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
