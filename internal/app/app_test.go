package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/TanaroSch/powerkey/internal/config"
	"github.com/TanaroSch/powerkey/internal/engine"
	"github.com/TanaroSch/powerkey/internal/hook/hooktest"
	"github.com/TanaroSch/powerkey/internal/keys"
	"github.com/TanaroSch/powerkey/internal/launcher"
	"github.com/TanaroSch/powerkey/internal/ui"
)

type note struct {
	level ui.NotificationLevel
	title string
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []note
	modes []bool
}

func (f *fakeNotifier) ShowNotification(title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, note{level: -1, title: title})
}

func (f *fakeNotifier) ShowAdminNotification(level ui.NotificationLevel, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, note{level: level, title: title})
}

func (f *fakeNotifier) ModeChanged(passThrough bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, passThrough)
}

func (f *fakeNotifier) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.notes {
		out = append(out, n.title)
	}
	return out
}

func (f *fakeNotifier) modeLog() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.modes...)
}

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
}

func (o *fakeOpener) Open(path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, path)
	return nil
}

func (o *fakeOpener) paths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

type fakeAutostart struct {
	enabled bool
	err     error
}

func (f *fakeAutostart) IsEnabled() bool { return f.enabled }

func (f *fakeAutostart) Enable() error {
	if f.err != nil {
		return f.err
	}
	f.enabled = true
	return nil
}

func (f *fakeAutostart) Disable() error {
	if f.err != nil {
		return f.err
	}
	f.enabled = false
	return nil
}

type fixture struct {
	app      *Application
	backend  *hooktest.Backend
	opener   *fakeOpener
	notifier *fakeNotifier
	auto     *fakeAutostart
	base     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.ShowTray = false
	base := filepath.Join(t.TempDir(), launcher.BaseFolderName)
	cfg.BasePath = base
	cfg.ToggleDebounceMS = 1

	f := &fixture{
		backend:  hooktest.New(),
		opener:   &fakeOpener{},
		notifier: &fakeNotifier{},
		auto:     &fakeAutostart{},
		base:     base,
	}
	a, err := newApplication(cfg, "test", nil, f.backend, launcher.New(base, f.opener), f.auto, f.notifier)
	if err != nil {
		t.Fatalf("newApplication() error = %v", err)
	}
	a.restart = func(func()) bool { return false }
	f.app = a
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(a.Shutdown)
	return f
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartCreatesTriggerFolders(t *testing.T) {
	f := newFixture(t)
	for _, tk := range keys.TriggerKeys() {
		if info, err := os.Stat(filepath.Join(f.base, tk.Label)); err != nil || !info.IsDir() {
			t.Errorf("folder %s missing: %v", tk.Label, err)
		}
	}
	if got := f.notifier.titles(); len(got) != 1 || got[0] != AppName+" is running" {
		t.Errorf("notifications = %v, want startup notice", got)
	}
}

func TestComboOpensFolder(t *testing.T) {
	f := newFixture(t)
	f.backend.Combo(keys.Enter, "f1")

	want := filepath.Join(f.base, "F1")
	waitFor(t, "folder open", func() bool { return len(f.opener.paths()) == 1 })
	if got := f.opener.paths(); !reflect.DeepEqual(got, []string{want}) {
		t.Errorf("opened %v, want [%s]", got, want)
	}
}

func TestComboLaunchesShortcut(t *testing.T) {
	f := newFixture(t)
	shortcut := filepath.Join(f.base, "F1", "a.lnk")
	if err := os.WriteFile(shortcut, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	f.backend.Combo("a", "f1")
	waitFor(t, "shortcut launch", func() bool { return len(f.opener.paths()) == 1 })
	if got := f.opener.paths()[0]; got != shortcut {
		t.Errorf("launched %q, want %q", got, shortcut)
	}
}

func TestMissingShortcutNotifies(t *testing.T) {
	f := newFixture(t)
	f.backend.Combo("z", "f6")

	waitFor(t, "notification", func() bool { return len(f.notifier.titles()) == 2 })
	if got := f.notifier.titles()[1]; got != "No Shortcut" {
		t.Errorf("notification = %q, want No Shortcut", got)
	}
	if n := len(f.opener.paths()); n != 0 {
		t.Errorf("opener called %d times, want 0", n)
	}
}

func TestToggleNotifiesModeChange(t *testing.T) {
	f := newFixture(t)
	f.backend.Combo(keys.Esc, keys.LeftWindows)

	waitFor(t, "mode change", func() bool { return len(f.notifier.modeLog()) == 1 })
	if got := f.notifier.modeLog(); !reflect.DeepEqual(got, []bool{true}) {
		t.Errorf("modes = %v, want [true]", got)
	}
	if f.app.Engine().Mode() != engine.PassThrough {
		t.Errorf("Mode() = %v, want PassThrough", f.app.Engine().Mode())
	}

	time.Sleep(10 * time.Millisecond)
	f.app.onToggleMenu()
	waitFor(t, "mode change back", func() bool { return len(f.notifier.modeLog()) == 2 })
	if f.app.Engine().Mode() != engine.Intercepting {
		t.Errorf("Mode() = %v, want Intercepting", f.app.Engine().Mode())
	}
}

func TestFatalEndsRun(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("re-hook failed")

	done := make(chan error, 1)
	go func() { done <- f.app.Run(context.Background()) }()
	f.app.onFatal(boom)

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("Run() error = %v, want %v", err, boom)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after a fatal error")
	}
}

func TestQuitEndsRun(t *testing.T) {
	f := newFixture(t)
	done := make(chan error, 1)
	go func() { done <- f.app.Run(context.Background()) }()
	f.app.Quit()
	f.app.Quit()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Quit")
	}
}

func TestShutdownReleasesHooks(t *testing.T) {
	f := newFixture(t)
	f.app.Shutdown()
	f.app.Shutdown()
	if !f.backend.Closed() {
		t.Error("backend not closed")
	}
	if got := f.app.Engine().Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty", got)
	}
}

func TestSetAutostart(t *testing.T) {
	f := newFixture(t)
	if !f.app.SetAutostart(true) || !f.auto.enabled {
		t.Fatal("SetAutostart(true) did not enable")
	}
	if f.app.SetAutostart(false) || f.auto.enabled {
		t.Fatal("SetAutostart(false) did not disable")
	}

	f.auto.err = errors.New("read-only registry")
	if f.app.SetAutostart(true) {
		t.Error("SetAutostart(true) = true after failure")
	}
	titles := f.notifier.titles()
	if titles[len(titles)-1] != "Start with System" {
		t.Errorf("last notification = %q, want failure notice", titles[len(titles)-1])
	}
}

func TestCopyFolderPath(t *testing.T) {
	f := newFixture(t)
	var copied string
	f.app.copyText = func(s string) error {
		copied = s
		return nil
	}
	f.app.onCopyFolderPath()
	if copied != f.base {
		t.Errorf("copied %q, want %q", copied, f.base)
	}
}

func TestNewRejectsBadToggle(t *testing.T) {
	cfg := config.Default()
	cfg.ShowTray = false
	cfg.ToggleHotkey = "win+f1"
	be := hooktest.New()
	if _, err := newApplication(cfg, "test", nil, be, launcher.New(t.TempDir(), &fakeOpener{}), &fakeAutostart{}, &fakeNotifier{}); err == nil {
		t.Fatal("newApplication() error = nil for a toggle on a trigger key")
	}
	if !be.Closed() {
		t.Error("backend left open after a failed New")
	}
}

// fakeTray stands in for the systray loop: Run blocks until Quit or Hide.
type fakeTray struct {
	mu     sync.Mutex
	hidden bool
	modes  []bool
	done   chan struct{}
	once   sync.Once
}

func newFakeTray() *fakeTray { return &fakeTray{done: make(chan struct{})} }

func (t *fakeTray) Run()  { <-t.done }
func (t *fakeTray) Quit() { t.once.Do(func() { close(t.done) }) }

func (t *fakeTray) SetMode(passThrough bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modes = append(t.modes, passThrough)
}

func (t *fakeTray) Hidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hidden
}

func (t *fakeTray) Hide() {
	t.mu.Lock()
	t.hidden = true
	t.mu.Unlock()
	t.Quit()
}

func TestHideTrayKeepsRunning(t *testing.T) {
	f := newFixture(t)
	tray := newFakeTray()
	f.app.tray = tray

	done := make(chan error, 1)
	go func() { done <- f.app.Run(context.Background()) }()

	f.app.onHideTray()
	tray.Hide()
	select {
	case err := <-done:
		t.Fatalf("Run() returned %v after the tray was hidden", err)
	case <-time.After(50 * time.Millisecond):
	}
	if got := f.notifier.titles(); len(got) == 0 || got[len(got)-1] != "Tray Icon Hidden" {
		t.Errorf("notifications = %v, want a final Tray Icon Hidden", got)
	}

	// Shortcuts still work without the icon.
	f.backend.Combo(keys.Enter, "f2")
	waitFor(t, "folder open", func() bool { return len(f.opener.paths()) == 1 })

	f.app.Quit()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Quit")
	}
}

func TestClosingTrayEndsRun(t *testing.T) {
	f := newFixture(t)
	tray := newFakeTray()
	f.app.tray = tray

	done := make(chan error, 1)
	go func() { done <- f.app.Run(context.Background()) }()
	tray.Quit()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after the tray loop ended")
	}
}
