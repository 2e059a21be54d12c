package ui

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/getlantern/systray"
)

// MenuCallbacks are invoked from the tray's click goroutines. Nil entries
// leave the item disabled.
type MenuCallbacks struct {
	OnToggleMode func()
	OnOpenFolder func()
	OnCopyPath   func()
	OnOpenConfig func()
	// OnAutostart receives the requested state and returns the state now in
	// effect.
	OnAutostart func(enable bool) bool
	OnHelp      func()
	OnRestart   func()
	// OnHideTray runs before the tray goes away. The application keeps
	// running without it.
	OnHideTray func()
	OnQuit     func()
}

// SystrayManager handles the system tray icon and menu
type SystrayManager struct {
	appName      string
	version      string
	embeddedIcon []byte
	callbacks    MenuCallbacks

	mu          sync.Mutex
	ready       bool
	hidden      bool
	passThrough bool
	autostart   bool
	miMode      *systray.MenuItem
	miToggle    *systray.MenuItem
	miAutostart *systray.MenuItem
}

// NewSystrayManager creates a new system tray manager
func NewSystrayManager(appName, version string, embeddedIcon []byte, autostartEnabled bool, callbacks MenuCallbacks) *SystrayManager {
	return &SystrayManager{
		appName:      appName,
		version:      version,
		embeddedIcon: embeddedIcon,
		callbacks:    callbacks,
		autostart:    autostartEnabled,
	}
}

// Run initializes and starts the system tray. It blocks until Quit.
func (s *SystrayManager) Run() {
	systray.Run(s.onReady, s.onExit)
}

// Quit closes the tray and makes Run return.
func (s *SystrayManager) Quit() {
	systray.Quit()
}

// Hide removes the icon and makes Run return. The tray loop cannot be
// restarted, so the icon stays gone until the process restarts.
func (s *SystrayManager) Hide() {
	s.markHidden()
	systray.Quit()
}

func (s *SystrayManager) markHidden() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden = true
	s.ready = false
}

// Hidden reports whether Run returned because the icon was hidden.
func (s *SystrayManager) Hidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// ModeTitle is the text of the mode line.
func ModeTitle(passThrough bool) string {
	if passThrough {
		return "Mode: Game Mode (keys pass through)"
	}
	return "Mode: Power Keys active"
}

// SetMode updates the mode line and the toggle checkmark.
func (s *SystrayManager) SetMode(passThrough bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passThrough = passThrough
	if !s.ready {
		return
	}
	s.miMode.SetTitle(ModeTitle(passThrough))
	setChecked(s.miToggle, passThrough)
	tooltip := fmt.Sprintf("%s %s", s.appName, s.version)
	if passThrough {
		tooltip += " (Game Mode)"
	}
	systray.SetTooltip(tooltip)
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// onReady is called by systray once the tray is ready.
func (s *SystrayManager) onReady() {
	title := fmt.Sprintf("%s %s", s.appName, s.version)
	systray.SetTitle(s.appName)
	systray.SetTooltip(title)
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	} else {
		log.Println("Warning: No embedded icon data to set for systray.")
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("Version: %s", s.version), s.appName+" version")
	miVersion.Disable()

	s.mu.Lock()
	s.miMode = systray.AddMenuItem(ModeTitle(s.passThrough), "Current interception mode")
	s.miMode.Disable()
	s.miToggle = systray.AddMenuItemCheckbox("Game Mode", "Pass every key through untouched", s.passThrough)
	s.mu.Unlock()
	systray.AddSeparator()

	miOpenFolder := systray.AddMenuItem("Open Shortcuts Folder", "Open the folder holding the F1..F12 shortcut folders")
	miCopyPath := systray.AddMenuItem("Copy Folder Path", "Copy the shortcuts folder path to the clipboard")
	miOpenConfig := systray.AddMenuItem("Open Config File", "Open config.json in the default editor")
	systray.AddSeparator()

	s.mu.Lock()
	s.miAutostart = systray.AddMenuItemCheckbox("Start with System", "Launch automatically when you log in", s.autostart)
	s.mu.Unlock()
	miHelp := systray.AddMenuItem("How to Use", "Show the key bindings")
	miRestart := systray.AddMenuItem("Restart", "Restart the application")
	miHide := systray.AddMenuItem("Hide Tray Icon", "Keep running without the tray icon until the next start")
	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	s.handle(s.miToggle, "Game Mode", s.callbacks.OnToggleMode)
	s.handle(miOpenFolder, "Open Shortcuts Folder", s.callbacks.OnOpenFolder)
	s.handle(miCopyPath, "Copy Folder Path", s.callbacks.OnCopyPath)
	s.handle(miOpenConfig, "Open Config File", s.callbacks.OnOpenConfig)
	s.handle(miHelp, "How to Use", s.callbacks.OnHelp)
	s.handle(miRestart, "Restart", s.callbacks.OnRestart)
	s.handle(miHide, "Hide Tray Icon", func() {
		if s.callbacks.OnHideTray != nil {
			s.callbacks.OnHideTray()
		}
		s.Hide()
	})

	if s.callbacks.OnAutostart != nil {
		go func() {
			for range s.miAutostart.ClickedCh {
				want := !s.miAutostart.Checked()
				log.Printf("Start with System menu item clicked (enable=%t).", want)
				got := s.callbacks.OnAutostart(want)
				s.mu.Lock()
				s.autostart = got
				setChecked(s.miAutostart, got)
				s.mu.Unlock()
			}
		}()
	} else {
		s.miAutostart.Disable()
	}

	go func() {
		<-miQuit.ClickedCh
		log.Println("Quit menu item clicked.")
		if s.callbacks.OnQuit != nil {
			s.callbacks.OnQuit()
		}
		systray.Quit()
	}()

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	// Apply a mode change that arrived before the menu existed.
	s.SetMode(s.currentMode())

	log.Println("Systray ready and menu configured.")
}

func (s *SystrayManager) currentMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passThrough
}

// handle runs fn for every click on item, or disables item when fn is nil.
func (s *SystrayManager) handle(item *systray.MenuItem, name string, fn func()) {
	if fn == nil {
		item.Disable()
		return
	}
	go func() {
		for range item.ClickedCh {
			log.Printf("%s menu item clicked.", name)
			fn()
		}
	}()
}

// onExit is called when the systray is exiting
func (s *SystrayManager) onExit() {
	log.Println("Systray exiting.")
}

// IsDevMode checks if the application is running in development mode
func IsDevMode() bool {
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not get executable path in IsDevMode: %v", err)
		return false
	}
	if isTempBuildPath(execPath, os.TempDir()) {
		log.Printf("IsDevMode check: Executable path (%s) looks like a go run build. Assuming Dev Mode.", execPath)
		return true
	}
	return false
}

// isTempBuildPath reports whether execPath is a go-build artifact or lives in
// tempDir.
func isTempBuildPath(execPath, tempDir string) bool {
	sep := string(filepath.Separator)
	if strings.Contains(execPath, sep+"go-build") {
		return true
	}
	cleanedExecDir := filepath.Clean(filepath.Dir(execPath))
	cleanedTempDir := filepath.Clean(tempDir)
	return cleanedExecDir == cleanedTempDir || strings.HasPrefix(cleanedExecDir, cleanedTempDir+sep)
}

// RestartApplication starts a fresh copy of the executable, runs cleanup and
// exits. It returns false, without exiting, when no new process was started.
func RestartApplication(cleanup func()) bool {
	log.Println("Attempting application restart...")
	if IsDevMode() {
		msg := "App running in dev mode. Please stop and run it again manually."
		log.Println("Development mode detected. Automatic restart is not supported.")
		ShowAdminNotification(LevelWarn, "Manual Restart Needed", msg)
		return false
	}
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Error getting executable path for restart: %v", err)
		ShowAdminNotification(LevelError, "Restart Error", fmt.Sprintf("Failed to get executable path. Error: %v", err))
		return false
	}

	// Hooks and the toggle hotkey must be free before the new process grabs them.
	if cleanup != nil {
		cleanup()
	}

	cmd := exec.Command(execPath, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if cwd, err := os.Getwd(); err == nil {
		cmd.Dir = cwd
	} else {
		log.Printf("Warning: Could not get CWD for restart: %v.", err)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Error starting new process during restart: %v", err)
		ShowError("Restart Error", fmt.Sprintf("Failed to start new application process: %v", err))
		os.Exit(1)
	}
	log.Println("Successfully started new process. Exiting current process now.")
	systray.Quit()
	os.Exit(0)
	return true
}
