package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Toggle listener kinds.
const (
	ListenerHook   = "hook"
	ListenerHotkey = "hotkey"
)

// Environment variables that override the file.
const (
	EnvBasePath       = "POWERKEY_BASE_PATH"
	EnvToggleHotkey   = "POWERKEY_TOGGLE_HOTKEY"
	EnvToggleListener = "POWERKEY_TOGGLE_LISTENER"
	EnvNotifications  = "POWERKEY_NOTIFICATIONS"
	EnvBackend        = "POWERKEY_BACKEND"
)

// Config holds the application configuration
type Config struct {
	// BasePath is the root of the F1..F12 folders. Empty means the default.
	BasePath         string `json:"base_path"`
	ToggleHotkey     string `json:"toggle_hotkey"`
	ToggleDebounceMS int    `json:"toggle_debounce_ms"`
	ToggleListener   string `json:"toggle_listener"`
	UseNotifications bool   `json:"use_notifications"`
	ModeChangeBeep   bool   `json:"mode_change_beep"`
	ShowTray         bool   `json:"show_tray"`
	ActionQueueSize  int    `json:"action_queue_size"`
	Backend          string `json:"backend"`

	// Non-JSON fields (runtime state)
	configPath string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ToggleHotkey:     "win+esc",
		ToggleDebounceMS: 300,
		ToggleListener:   ListenerHook,
		UseNotifications: true,
		ModeChangeBeep:   false,
		ShowTray:         true,
		ActionQueueSize:  64,
		Backend:          "auto",
	}
}

// GetConfigPath returns the path to the configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// DefaultPath is config.json next to the executable, falling back to the
// working directory.
func DefaultPath() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), "config.json")
	}
	return "config.json"
}

// Load reads the configuration file, creating a default one when it is
// missing, then applies a .env file beside it and the process environment.
func Load(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		log.Printf("Config file '%s' not found. Attempting to create default.", configPath)
		if createErr := CreateDefaultConfig(configPath); createErr != nil {
			log.Printf("Warning: %v. Continuing with built-in defaults.", createErr)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	config.configPath = configPath

	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if dotenv, err := godotenv.Read(envPath); err == nil {
		log.Printf("Applying overrides from %s", envPath)
		config.applyEnv(func(k string) string { return dotenv[k] })
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: failed to read %s: %v", envPath, err)
	}
	config.applyEnv(os.Getenv)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides fields from non-empty variables.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvBasePath); v != "" {
		c.BasePath = v
	}
	if v := getenv(EnvToggleHotkey); v != "" {
		c.ToggleHotkey = v
	}
	if v := getenv(EnvToggleListener); v != "" {
		c.ToggleListener = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv(EnvBackend); v != "" {
		c.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv(EnvNotifications); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("Warning: ignoring %s=%q: %v", EnvNotifications, v, err)
		} else {
			c.UseNotifications = b
		}
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := keys.ParseToggle(c.ToggleHotkey); err != nil {
		return fmt.Errorf("%w: toggle_hotkey: %w", ErrInvalidConfig, err)
	}
	switch c.ToggleListener {
	case ListenerHook, ListenerHotkey:
	default:
		return fmt.Errorf("%w: toggle_listener must be %q or %q, got %q", ErrInvalidConfig, ListenerHook, ListenerHotkey, c.ToggleListener)
	}
	switch c.Backend {
	case "", "auto", "windows", "gohook":
	default:
		return fmt.Errorf("%w: backend must be auto, windows or gohook, got %q", ErrInvalidConfig, c.Backend)
	}
	if c.ToggleDebounceMS < 0 {
		return fmt.Errorf("%w: toggle_debounce_ms must not be negative", ErrInvalidConfig)
	}
	if c.ActionQueueSize < 1 {
		return fmt.Errorf("%w: action_queue_size must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// CreateDefaultConfig creates a default configuration file if none exists
func CreateDefaultConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return nil // File exists, don't overwrite
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking config path '%s': %w", configPath, err)
	}

	log.Printf("Creating default configuration file at: %s", configPath)

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config to JSON: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write default config file '%s': %w", configPath, err)
	}

	log.Printf("Default configuration file created successfully.")
	return nil
}
