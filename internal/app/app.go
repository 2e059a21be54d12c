// Package app wires the engine to the launcher, the tray and notifications.
package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/TanaroSch/powerkey/internal/autostart"
	"github.com/TanaroSch/powerkey/internal/backend"
	"github.com/TanaroSch/powerkey/internal/config"
	"github.com/TanaroSch/powerkey/internal/engine"
	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/hotkey"
	"github.com/TanaroSch/powerkey/internal/keys"
	"github.com/TanaroSch/powerkey/internal/launcher"
	"github.com/TanaroSch/powerkey/internal/resources"
	"github.com/TanaroSch/powerkey/internal/ui"
)

// AppName is shown in the tray, notifications and dialogs.
const AppName = "PowerKey"

const shutdownTimeout = 3 * time.Second

// notifier is the part of ui.NotificationManager the application uses.
type notifier interface {
	ShowNotification(title, message string)
	ShowAdminNotification(level ui.NotificationLevel, title, message string)
	ModeChanged(passThrough bool)
}

// trayIcon is the part of ui.SystrayManager the application drives.
type trayIcon interface {
	Run()
	Quit()
	SetMode(passThrough bool)
	Hidden() bool
}

// Application represents the main application
type Application struct {
	config    *config.Config
	version   string
	iconData  []byte
	engine    *engine.Engine
	launcher  *launcher.Launcher
	autostart autostart.Autostart
	notifier  notifier
	tray      trayIcon

	copyText func(string) error
	openFile func(string) error
	restart  func(cleanup func()) bool

	fatal    chan error
	quit     chan struct{}
	quitOnce sync.Once
	stopOnce sync.Once
}

// New creates a new application instance for the configured backend.
func New(cfg *config.Config, version string) (*Application, error) {
	iconData, err := resources.GetIcon()
	if err != nil {
		log.Printf("Warning: Failed to render icon: %v", err)
	}
	be, err := backend.Select(cfg.Backend)
	if err != nil {
		return nil, err
	}
	n := ui.InitGlobalNotifications(cfg.UseNotifications, cfg.ModeChangeBeep, AppName, iconData)
	return newApplication(cfg, version, iconData, be, launcher.New(cfg.BasePath, nil), autostart.New(), n)
}

func newApplication(cfg *config.Config, version string, iconData []byte, be hook.Backend,
	l *launcher.Launcher, as autostart.Autostart, n notifier) (*Application, error) {
	a := &Application{
		config:    cfg,
		version:   version,
		iconData:  iconData,
		launcher:  l,
		autostart: as,
		notifier:  n,
		copyText:  clipboard.WriteAll,
		openFile:  launcher.OpenInDefaultApp,
		restart:   ui.RestartApplication,
		fatal:     make(chan error, 1),
		quit:      make(chan struct{}),
	}

	opts := engine.Options{
		ToggleHotkey: cfg.ToggleHotkey,
		Debounce:     time.Duration(cfg.ToggleDebounceMS) * time.Millisecond,
		QueueSize:    cfg.ActionQueueSize,
		OnFatal:      a.onFatal,
	}
	if cfg.ToggleListener == config.ListenerHotkey {
		log.Println("App: toggle hotkey registered with the OS hotkey API")
		opts.ToggleSource = hotkey.NewSource(be.Serialize)
	}
	eng, err := engine.New(be, a, opts)
	if err != nil {
		be.Close()
		return nil, err
	}
	a.engine = eng

	if cfg.ShowTray {
		a.tray = ui.NewSystrayManager(AppName, version, iconData, as.IsEnabled(), ui.MenuCallbacks{
			OnToggleMode: a.onToggleMenu,
			OnOpenFolder: a.onOpenBaseFolder,
			OnCopyPath:   a.onCopyFolderPath,
			OnOpenConfig: a.onOpenConfigFile,
			OnAutostart:  a.SetAutostart,
			OnHelp:       a.onHelp,
			OnRestart:    a.onRestartApplication,
			OnHideTray:   a.onHideTray,
			OnQuit:       a.Quit,
		})
	}
	return a, nil
}

// Engine exposes the interception engine.
func (a *Application) Engine() *engine.Engine { return a.engine }

// Start creates the folders, starts the folder watcher and installs the hooks.
// A failure here is fatal for the process.
func (a *Application) Start() error {
	if err := a.launcher.Watch(); err != nil {
		log.Printf("Warning: App: folder watcher unavailable, shortcut lookups read the disk: %v", err)
	}
	for _, t := range keys.TriggerKeys() {
		if _, err := a.launcher.EnsureFolder(t); err != nil {
			log.Printf("Warning: App: %v", err)
		}
	}
	if err := a.engine.Start(); err != nil {
		a.launcher.Close()
		return fmt.Errorf("start engine: %w", err)
	}
	a.notifier.ShowNotification(AppName+" is running",
		fmt.Sprintf("Shortcuts live in %s. Press %s to toggle Game Mode.", a.launcher.BasePath(), a.engine.ToggleHotkey()))
	return nil
}

// Run blocks until ctx is done, Quit is called or the engine reports a fatal
// error, which is returned. With a tray it runs the tray loop and must be
// called from the main goroutine. Hiding the tray ends the loop but not Run.
func (a *Application) Run(ctx context.Context) error {
	result := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			result <- nil
		case <-a.quit:
			result <- nil
		case err := <-a.fatal:
			result <- err
		}
		if a.tray != nil {
			a.tray.Quit()
		}
	}()
	if a.tray == nil {
		return <-result
	}
	a.tray.Run()
	if a.tray.Hidden() {
		log.Println("App: tray icon hidden, running without it")
	} else {
		a.Quit()
	}
	return <-result
}

// Quit makes Run return.
func (a *Application) Quit() {
	a.quitOnce.Do(func() {
		log.Println("App: quit requested")
		close(a.quit)
	})
}

// Shutdown releases the hooks and stops the folder watcher. It is safe to
// call more than once.
func (a *Application) Shutdown() {
	a.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.engine.Stop(ctx); err != nil {
			log.Printf("Warning: App: engine stop: %v", err)
		}
		if err := a.launcher.Close(); err != nil {
			log.Printf("Warning: App: folder watcher close: %v", err)
		}
	})
}

// OpenFolder implements engine.Actions.
func (a *Application) OpenFolder(trigger keys.TriggerKey) bool {
	if a.launcher.OpenFolder(trigger) {
		return true
	}
	a.notifier.ShowAdminNotification(ui.LevelWarn, "Folder Error",
		fmt.Sprintf("Could not open the folder for %s: %s", trigger.Label, a.launcher.FolderPath(trigger)))
	return false
}

// LaunchShortcut implements engine.Actions.
func (a *Application) LaunchShortcut(trigger keys.TriggerKey, sym keys.SecondaryTrigger) bool {
	if a.launcher.LaunchShortcut(trigger, sym) {
		return true
	}
	if _, found := a.launcher.FindShortcut(trigger, sym); found {
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Launch Failed",
			fmt.Sprintf("The shortcut for %s+%s could not be opened.", trigger.Label, sym))
	} else {
		a.notifier.ShowNotification("No Shortcut",
			fmt.Sprintf("Put a shortcut named '%s' in %s.", sym, a.launcher.FolderPath(trigger)))
	}
	return false
}

// OnModeChanged implements engine.Actions.
func (a *Application) OnModeChanged(passThrough bool) {
	log.Printf("App: game mode %t", passThrough)
	if a.tray != nil {
		a.tray.SetMode(passThrough)
	}
	a.notifier.ModeChanged(passThrough)
}

// onFatal handles a key that could not be hooked again after a relay: the
// process restarts so suppression is never silently lost.
func (a *Application) onFatal(err error) {
	log.Printf("Error: App: fatal engine error: %v", err)
	a.notifier.ShowAdminNotification(ui.LevelError, "Keyboard Hook Lost", err.Error()+". Restarting.")
	if a.restart(a.Shutdown) {
		return
	}
	select {
	case a.fatal <- err:
	default:
	}
}

// SetAutostart applies the requested start-with-system state and returns the
// state now in effect.
func (a *Application) SetAutostart(enable bool) bool {
	var err error
	if enable {
		err = a.autostart.Enable()
	} else {
		err = a.autostart.Disable()
	}
	if err != nil {
		log.Printf("Warning: App: autostart: %v", err)
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Start with System", err.Error())
	}
	return a.autostart.IsEnabled()
}

func (a *Application) onToggleMenu() {
	if !a.engine.Toggle() && a.tray != nil {
		a.tray.SetMode(a.engine.Mode() == engine.PassThrough)
	}
}

func (a *Application) onOpenBaseFolder() {
	if !a.launcher.OpenBase() {
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Folder Error", "Could not open "+a.launcher.BasePath())
	}
}

func (a *Application) onCopyFolderPath() {
	path := a.launcher.BasePath()
	if err := a.copyText(path); err != nil {
		log.Printf("Warning: App: copy folder path: %v", err)
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Clipboard Error", err.Error())
		return
	}
	a.notifier.ShowNotification("Folder Path Copied", path)
}

func (a *Application) onOpenConfigFile() {
	path := a.config.GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := config.CreateDefaultConfig(path); err != nil {
		log.Printf("Warning: App: %v", err)
	}
	if err := a.openFile(path); err != nil {
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Error Opening File", err.Error())
	}
}

func (a *Application) onHelp() {
	ui.ShowInfo(AppName+" - How to Use", ui.UsageText(a.launcher.BasePath(), a.engine.ToggleHotkey().String()))
}

func (a *Application) onHideTray() {
	a.notifier.ShowNotification("Tray Icon Hidden",
		fmt.Sprintf("%s keeps running. Press %s to toggle Game Mode; restart %s to show the icon again.",
			AppName, a.engine.ToggleHotkey(), AppName))
}

func (a *Application) onRestartApplication() {
	a.restart(a.Shutdown)
}
