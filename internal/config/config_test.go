package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBasePath, EnvToggleHotkey, EnvToggleListener, EnvNotifications, EnvBackend} {
		t.Setenv(k, "")
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	want := Default()
	want.configPath = path
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", *cfg, *want)
	}
	if cfg.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", cfg.GetConfigPath(), path)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"base_path": "/srv/keys", "use_notifications": false}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BasePath != "/srv/keys" || cfg.UseNotifications {
		t.Errorf("file values not applied: %+v", *cfg)
	}
	if cfg.ToggleHotkey != "win+esc" || cfg.ToggleDebounceMS != 300 || cfg.ActionQueueSize != 64 {
		t.Errorf("defaults lost: %+v", *cfg)
	}
}

func TestLoadOverridePrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"base_path": "/from/file", "toggle_hotkey": "win+esc"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	dotenv := "POWERKEY_BASE_PATH=/from/dotenv\nPOWERKEY_TOGGLE_HOTKEY=ctrl+space\nPOWERKEY_NOTIFICATIONS=false\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBasePath, "/from/env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BasePath != "/from/env" {
		t.Errorf("BasePath = %q, want process env to win", cfg.BasePath)
	}
	if cfg.ToggleHotkey != "ctrl+space" {
		t.Errorf("ToggleHotkey = %q, want .env value", cfg.ToggleHotkey)
	}
	if cfg.UseNotifications {
		t.Error("UseNotifications = true, want .env override false")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"base_path":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil for malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"hotkey listener", func(c *Config) { c.ToggleListener = ListenerHotkey }, true},
		{"toggle on trigger key", func(c *Config) { c.ToggleHotkey = "win+f1" }, false},
		{"toggle on secondary", func(c *Config) { c.ToggleHotkey = "ctrl+q" }, false},
		{"toggle on confirm", func(c *Config) { c.ToggleHotkey = "win+enter" }, false},
		{"malformed toggle", func(c *Config) { c.ToggleHotkey = "win" }, false},
		{"unknown listener", func(c *Config) { c.ToggleListener = "polling" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "wayland" }, false},
		{"negative debounce", func(c *Config) { c.ToggleDebounceMS = -1 }, false},
		{"empty queue", func(c *Config) { c.ActionQueueSize = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestCreateDefaultConfigKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"show_tray": false}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CreateDefaultConfig(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"show_tray": false}` {
		t.Errorf("existing config overwritten: %s", data)
	}
}
