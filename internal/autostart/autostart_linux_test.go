//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinuxAutostartRoundTrip(t *testing.T) {
	a := &LinuxAutostart{configHome: t.TempDir(), exe: "/opt/powerkey/powerkey"}

	if a.IsEnabled() {
		t.Fatal("IsEnabled() = true before Enable")
	}
	if err := a.Disable(); err != nil {
		t.Fatalf("Disable() without entry error = %v, want nil", err)
	}
	if err := a.Enable(); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if !a.IsEnabled() {
		t.Fatal("IsEnabled() = false after Enable")
	}
	data, err := os.ReadFile(filepath.Join(a.configHome, "autostart", "powerkey.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Exec=/opt/powerkey/powerkey\n") {
		t.Errorf("desktop entry missing Exec line:\n%s", data)
	}

	if err := a.Disable(); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if a.IsEnabled() {
		t.Error("IsEnabled() = true after Disable")
	}
}

func TestLinuxAutostartOtherExecutable(t *testing.T) {
	dir := t.TempDir()
	other := &LinuxAutostart{configHome: dir, exe: "/usr/bin/old-powerkey"}
	if err := other.Enable(); err != nil {
		t.Fatal(err)
	}
	a := &LinuxAutostart{configHome: dir, exe: "/opt/powerkey/powerkey"}
	if a.IsEnabled() {
		t.Error("IsEnabled() = true for an entry starting another executable")
	}
}
