package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestModeTitle(t *testing.T) {
	if got := ModeTitle(false); !strings.Contains(got, "active") {
		t.Errorf("ModeTitle(false) = %q", got)
	}
	if got := ModeTitle(true); !strings.Contains(got, "Game Mode") {
		t.Errorf("ModeTitle(true) = %q", got)
	}
}

func TestSetModeBeforeReady(t *testing.T) {
	s := NewSystrayManager("PowerKey", "v0", nil, false, MenuCallbacks{})
	s.SetMode(true)
	if !s.currentMode() {
		t.Error("mode not remembered before the menu exists")
	}
}

func TestHiddenTrayIgnoresModeUpdates(t *testing.T) {
	s := NewSystrayManager("PowerKey", "v0", nil, false, MenuCallbacks{})
	if s.Hidden() {
		t.Fatal("new tray reports hidden")
	}
	s.markHidden()
	if !s.Hidden() {
		t.Fatal("Hidden() = false after hiding")
	}
	// The menu items are gone; only the state is kept.
	s.SetMode(true)
	if !s.currentMode() {
		t.Error("mode not remembered while hidden")
	}
}

func TestIsTempBuildPath(t *testing.T) {
	tmp := filepath.Join(string(filepath.Separator), "tmp")
	tests := []struct {
		name string
		exe  string
		want bool
	}{
		{"go run", filepath.Join(tmp, "go-build1234", "b001", "exe", "powerkey"), true},
		{"temp dir", filepath.Join(tmp, "powerkey"), true},
		{"sibling of temp", filepath.Join(string(filepath.Separator), "tmpfoo", "powerkey"), false},
		{"installed", filepath.Join(string(filepath.Separator), "opt", "powerkey", "powerkey"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTempBuildPath(tt.exe, tmp); got != tt.want {
				t.Errorf("isTempBuildPath(%q) = %v, want %v", tt.exe, got, tt.want)
			}
		})
	}
}

func TestAdminNotificationLevels(t *testing.T) {
	var shown []string
	n := NewNotificationManager(false, false, "PowerKey", nil)
	n.notify = func(title, message string) error {
		shown = append(shown, title)
		return nil
	}

	n.ShowNotification("plain", "hidden")
	n.ShowAdminNotification(LevelInfo, "info", "hidden")
	n.ShowAdminNotification(LevelWarn, "warn", "shown")
	n.ShowAdminNotification(LevelError, "error", "shown")

	want := []string{"PowerKey: warn", "PowerKey: error"}
	if strings.Join(shown, "|") != strings.Join(want, "|") {
		t.Errorf("shown %v, want %v", shown, want)
	}
}

func TestModeChangedBeepsAndNotifies(t *testing.T) {
	var titles []string
	beeps := 0
	n := NewNotificationManager(true, true, "PowerKey", nil)
	n.notify = func(title, message string) error {
		titles = append(titles, title)
		return errors.New("no notification daemon")
	}
	n.beep = func() error {
		beeps++
		return nil
	}

	n.ModeChanged(true)
	n.ModeChanged(false)

	if beeps != 2 {
		t.Errorf("beeps = %d, want 2", beeps)
	}
	on, _ := ModeMessage(true)
	off, _ := ModeMessage(false)
	if len(titles) != 2 || titles[0] != on || titles[1] != off {
		t.Errorf("titles = %v, want [%s %s]", titles, on, off)
	}
}

func TestUsageTextListsKeys(t *testing.T) {
	text := UsageText(filepath.Join("base"), "win+esc")
	for _, want := range []string{"F1, F6", "F2, F3", filepath.Join("base", "F1", "a.lnk"), "win+esc"} {
		if !strings.Contains(text, want) {
			t.Errorf("UsageText() missing %q:\n%s", want, text)
		}
	}
}
