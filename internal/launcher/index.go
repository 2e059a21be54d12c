package launcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// folderIndex caches directory listings while a watcher keeps them honest.
type folderIndex struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	base    string
	cache   map[string][]string
	gen     uint64 // bumped on every invalidation
	done    chan struct{}
}

func newFolderIndex() *folderIndex {
	return &folderIndex{cache: make(map[string][]string)}
}

func (x *folderIndex) start(base string, folders []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create folder watcher: %w", err)
	}
	if err := w.Add(base); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", base, err)
	}
	for _, dir := range folders {
		if _, err := os.Stat(dir); err == nil {
			if err := w.Add(dir); err != nil {
				log.Printf("Warning: Launcher: cannot watch %s: %v", dir, err)
			}
		}
	}
	x.watcher = w
	x.base = filepath.Clean(base)
	x.cache = make(map[string][]string)
	x.done = make(chan struct{})
	go x.loop(w, x.done)
	log.Printf("Launcher: watching %s for shortcut changes", base)
	return nil
}

func (x *folderIndex) loop(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			x.handle(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("Launcher: folder watcher error: %v", err)
			x.mu.Lock()
			x.gen++
			x.cache = make(map[string][]string)
			x.mu.Unlock()
		}
	}
}

func (x *folderIndex) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	parent := filepath.Dir(path)

	x.mu.Lock()
	defer x.mu.Unlock()
	x.gen++
	delete(x.cache, parent)
	delete(x.cache, path)

	// A trigger folder created after start gets watched too.
	if parent == x.base && ev.Has(fsnotify.Create) && x.watcher != nil {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := x.watcher.Add(path); err != nil {
				log.Printf("Warning: Launcher: cannot watch %s: %v", path, err)
			}
		}
	}
}

// watchFolder adds dir to a running watcher. It is a no-op otherwise.
func (x *folderIndex) watchFolder(dir string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.watcher == nil {
		return
	}
	for _, p := range x.watcher.WatchList() {
		if p == dir {
			return
		}
	}
	if err := x.watcher.Add(dir); err != nil {
		log.Printf("Warning: Launcher: cannot watch %s: %v", dir, err)
	}
	x.gen++
	delete(x.cache, filepath.Clean(dir))
}

// list returns the entry names of dir, from cache when watched.
func (x *folderIndex) list(dir string) ([]string, error) {
	dir = filepath.Clean(dir)
	x.mu.Lock()
	watching := x.watcher != nil
	gen := x.gen
	if names, ok := x.cache[dir]; ok && watching {
		x.mu.Unlock()
		return names, nil
	}
	x.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if watching {
		x.mu.Lock()
		// A change seen while reading may not be in names.
		if x.gen == gen && x.watcher != nil {
			x.cache[dir] = names
		}
		x.mu.Unlock()
	}
	return names, nil
}

func (x *folderIndex) close() error {
	x.mu.Lock()
	w := x.watcher
	done := x.done
	x.watcher = nil
	x.mu.Unlock()
	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}
