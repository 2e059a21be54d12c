// Package launcher maps trigger keys to folders under a base directory and
// opens the shortcuts stored in them.
package launcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// BaseFolderName is the directory created under the local app data folder.
const BaseFolderName = "Power Keys"

// shortcutExtensions are tried in order; "" matches a file named exactly
// after the symbol.
var shortcutExtensions = []string{".lnk", ".url", ""}

// Opener hands a path to the desktop, which picks the program for it.
type Opener interface {
	Open(path string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) error

func (f OpenerFunc) Open(path string) error { return f(path) }

// DefaultBasePath is %LOCALAPPDATA%\Power Keys, or the user config dir on
// systems without LOCALAPPDATA.
func DefaultBasePath() string {
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		return filepath.Join(local, BaseFolderName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, BaseFolderName)
	}
	return BaseFolderName
}

// Launcher implements the folder and shortcut actions.
type Launcher struct {
	base   string
	opener Opener
	index  *folderIndex
}

// New returns a launcher rooted at base. A nil opener uses the platform
// default.
func New(base string, opener Opener) *Launcher {
	if base == "" {
		base = DefaultBasePath()
	}
	if opener == nil {
		opener = OpenerFunc(OpenInDefaultApp)
	}
	return &Launcher{base: base, opener: opener, index: newFolderIndex()}
}

// BasePath returns the root directory.
func (l *Launcher) BasePath() string { return l.base }

// InitBaseFolder creates the base directory if it is missing.
func (l *Launcher) InitBaseFolder() error {
	if err := os.MkdirAll(l.base, 0o755); err != nil {
		return fmt.Errorf("create base folder %s: %w", l.base, err)
	}
	return nil
}

// OpenBase opens the base directory, creating it when absent.
func (l *Launcher) OpenBase() bool {
	if err := l.InitBaseFolder(); err != nil {
		log.Printf("Launcher: %v", err)
		return false
	}
	if err := l.opener.Open(l.base); err != nil {
		log.Printf("Launcher: failed to open folder %s: %v", l.base, err)
		return false
	}
	return true
}

// FolderPath is the directory for trigger, named after its label ("F1").
func (l *Launcher) FolderPath(trigger keys.TriggerKey) string {
	return filepath.Join(l.base, trigger.Label)
}

// EnsureFolder creates the trigger's directory if needed and returns it.
func (l *Launcher) EnsureFolder(trigger keys.TriggerKey) (string, error) {
	dir := l.FolderPath(trigger)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder for %s: %w", trigger.Label, err)
	}
	l.index.watchFolder(dir)
	return dir, nil
}

// OpenFolder opens the trigger's directory in the file manager, creating it
// first when absent.
func (l *Launcher) OpenFolder(trigger keys.TriggerKey) bool {
	dir, err := l.EnsureFolder(trigger)
	if err != nil {
		log.Printf("Launcher: %v", err)
		return false
	}
	if err := l.opener.Open(dir); err != nil {
		log.Printf("Launcher: failed to open folder %s: %v", dir, err)
		return false
	}
	log.Printf("Launcher: opened folder %s", dir)
	return true
}

// FindShortcut looks for a file named after sym, ignoring case, preferring
// .lnk over .url over no extension.
func (l *Launcher) FindShortcut(trigger keys.TriggerKey, sym keys.SecondaryTrigger) (string, bool) {
	dir := l.FolderPath(trigger)
	names, err := l.index.list(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Launcher: failed to read %s: %v", dir, err)
		}
		return "", false
	}
	base := sym.String()
	for _, ext := range shortcutExtensions {
		want := base + ext
		for _, name := range names {
			if strings.EqualFold(name, want) {
				return filepath.Join(dir, name), true
			}
		}
	}
	return "", false
}

// LaunchShortcut opens the shortcut for trigger+sym. It reports false when
// there is none or it could not be opened.
func (l *Launcher) LaunchShortcut(trigger keys.TriggerKey, sym keys.SecondaryTrigger) bool {
	path, ok := l.FindShortcut(trigger, sym)
	if !ok {
		log.Printf("Launcher: no shortcut for %s+%s in %s", trigger.Label, sym, l.FolderPath(trigger))
		return false
	}
	if err := l.opener.Open(path); err != nil {
		log.Printf("Launcher: failed to launch %s: %v", path, err)
		return false
	}
	log.Printf("Launcher: launched %s", path)
	return true
}

// Watch keeps folder listings cached until fsnotify reports a change. Without
// it every lookup reads the directory.
func (l *Launcher) Watch() error {
	if err := l.InitBaseFolder(); err != nil {
		return err
	}
	var folders []string
	for _, t := range keys.TriggerKeys() {
		folders = append(folders, l.FolderPath(t))
	}
	return l.index.start(l.base, folders)
}

// Close stops the watcher.
func (l *Launcher) Close() error { return l.index.close() }
