package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/TanaroSch/powerkey/internal/keys"
)

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (f *fakeOpener) Open(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.opened = append(f.opened, path)
	return nil
}

func (f *fakeOpener) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func mustTrigger(t *testing.T, name string) keys.TriggerKey {
	t.Helper()
	tk, err := keys.ParseTrigger(name)
	if err != nil {
		t.Fatal(err)
	}
	return tk
}

func mustSecondary(t *testing.T, name string) keys.SecondaryTrigger {
	t.Helper()
	s, err := keys.ParseSecondary(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLaunchShortcut(t *testing.T) {
	base := t.TempDir()
	opener := &fakeOpener{}
	l := New(base, opener)
	f1 := mustTrigger(t, "F1")
	touch(t, filepath.Join(base, "F1", "a.lnk"))

	if !l.LaunchShortcut(f1, mustSecondary(t, "a")) {
		t.Fatal("LaunchShortcut(F1, a) = false, want true")
	}
	if !l.LaunchShortcut(f1, mustSecondary(t, "A")) {
		t.Fatal("LaunchShortcut(F1, A) = false, want true")
	}
	want := []string{filepath.Join(base, "F1", "a.lnk"), filepath.Join(base, "F1", "a.lnk")}
	if got := opener.paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("opened %v, want %v", got, want)
	}

	if l.LaunchShortcut(f1, mustSecondary(t, "b")) {
		t.Error("LaunchShortcut(F1, b) = true with no shortcut, want false")
	}
	if l.LaunchShortcut(mustTrigger(t, "F2"), mustSecondary(t, "a")) {
		t.Error("LaunchShortcut(F2, a) = true with no folder, want false")
	}
	if got := len(opener.paths()); got != 2 {
		t.Errorf("opener called %d times, want 2", got)
	}
}

func TestFindShortcutPriority(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"lnk beats url", []string{"x.url", "x.lnk", "x"}, "x.lnk"},
		{"url beats bare", []string{"x", "x.url"}, "x.url"},
		{"bare", []string{"x"}, "x"},
		{"uppercase", []string{"X.LNK"}, "X.LNK"},
		{"other extension ignored", []string{"x.exe"}, ""},
		{"prefix ignored", []string{"xy.lnk"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(base, "F9", f))
			}
			l := New(base, &fakeOpener{})
			got, ok := l.FindShortcut(mustTrigger(t, "f9"), mustSecondary(t, "x"))
			if tt.want == "" {
				if ok {
					t.Errorf("FindShortcut() = %q, want none", got)
				}
				return
			}
			if !ok || filepath.Base(got) != tt.want {
				t.Errorf("FindShortcut() = %q, %v, want %q", got, ok, tt.want)
			}
		})
	}
}

func TestOpenFolderCreatesFolder(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseFolderName)
	opener := &fakeOpener{}
	l := New(base, opener)
	f7 := mustTrigger(t, "F7")

	if !l.OpenFolder(f7) {
		t.Fatal("OpenFolder(F7) = false, want true")
	}
	dir := filepath.Join(base, "F7")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("folder %s not created: %v", dir, err)
	}
	if got := opener.paths(); !reflect.DeepEqual(got, []string{dir}) {
		t.Errorf("opened %v, want [%s]", got, dir)
	}
}

func TestOpenBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseFolderName)
	opener := &fakeOpener{}
	l := New(base, opener)
	if !l.OpenBase() {
		t.Fatal("OpenBase() = false, want true")
	}
	if _, err := os.Stat(base); err != nil {
		t.Fatalf("base folder not created: %v", err)
	}
	if got := opener.paths(); !reflect.DeepEqual(got, []string{base}) {
		t.Errorf("opened %v, want [%s]", got, base)
	}
}

func TestOpenerFailure(t *testing.T) {
	base := t.TempDir()
	opener := &fakeOpener{err: errors.New("no desktop")}
	l := New(base, opener)
	touch(t, filepath.Join(base, "F1", "a.url"))

	if l.OpenFolder(mustTrigger(t, "F1")) {
		t.Error("OpenFolder() = true with failing opener, want false")
	}
	if l.LaunchShortcut(mustTrigger(t, "F1"), mustSecondary(t, "a")) {
		t.Error("LaunchShortcut() = true with failing opener, want false")
	}
}

func TestWatchInvalidatesCache(t *testing.T) {
	base := t.TempDir()
	l := New(base, &fakeOpener{})
	f3 := mustTrigger(t, "F3")
	s := mustSecondary(t, "7")
	if _, err := l.EnsureFolder(f3); err != nil {
		t.Fatal(err)
	}
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer l.Close()

	if _, ok := l.FindShortcut(f3, s); ok {
		t.Fatal("FindShortcut() found a shortcut in an empty folder")
	}
	touch(t, filepath.Join(base, "F3", "7.lnk"))

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := l.FindShortcut(f3, s); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("new shortcut not visible after watcher event")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.Remove(filepath.Join(base, "F3", "7.lnk")); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(3 * time.Second)
	for {
		if _, ok := l.FindShortcut(f3, s); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("removed shortcut still visible after watcher event")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDefaultBasePath(t *testing.T) {
	t.Setenv("LOCALAPPDATA", filepath.Join("C:", "Users", "me", "AppData", "Local"))
	want := filepath.Join("C:", "Users", "me", "AppData", "Local", BaseFolderName)
	if got := DefaultBasePath(); got != want {
		t.Errorf("DefaultBasePath() = %q, want %q", got, want)
	}
}
