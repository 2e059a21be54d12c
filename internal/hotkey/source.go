// Package hotkey registers the pass-through toggle as an OS hotkey
// (RegisterHotKey on Windows, XGrabKey on X11) instead of watching it through
// the keyboard hook.
package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// Source delivers toggle activations from golang.design/x/hotkey. Each
// activation runs inside serialize, so it never overlaps a keyboard event
// being dispatched by the hook backend.
type Source struct {
	serialize func(func())
}

// NewSource returns a toggle source. serialize is normally the hook
// backend's Serialize method.
func NewSource(serialize func(func())) *Source {
	return &Source{serialize: serialize}
}

// modifierFamily folds sided modifier names and windows aliases into
// "ctrl", "alt", "shift" or "win". RegisterHotKey cannot tell sides apart.
func modifierFamily(name string) string {
	if keys.IsWindowsAlias(name) {
		return "win"
	}
	n := keys.Normalize(name)
	for _, generic := range []keys.Key{keys.Ctrl, keys.Alt, keys.Shift} {
		if n == generic {
			return string(generic)
		}
		for _, side := range keys.Sides(generic) {
			if n == side {
				return string(generic)
			}
		}
	}
	if n == keys.LeftWindows || n == keys.RightWindows {
		return "win"
	}
	return strings.ToLower(name)
}

// Watch registers the hotkey, once per lock-modifier variant where the
// platform needs it, and calls fn on every key-down.
func (s *Source) Watch(t keys.Toggle, fn func()) (hook.Handle, error) {
	modifiers, key, err := parseToggle(t)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hotkey '%s': %w", t, err)
	}

	w := &watch{name: t.String(), stopCh: make(chan struct{})}
	for _, mods := range expandModifiers(modifiers) {
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			if rerr := w.Release(); rerr != nil {
				log.Printf("Hotkey source: cleanup after failed register: %v", rerr)
			}
			return nil, fmt.Errorf("failed to register hotkey '%s': %w", t, err)
		}
		w.hotkeys = append(w.hotkeys, hk)
	}

	for _, hk := range w.hotkeys {
		w.wg.Add(1)
		go w.listen(hk, func() { s.serialize(fn) })
	}
	log.Printf("Hotkey source: registered toggle hotkey '%s' (%d variants)", t, len(w.hotkeys))
	return w, nil
}

type watch struct {
	name    string
	hotkeys []*hotkey.Hotkey
	stopCh  chan struct{}
	wg      sync.WaitGroup

	once sync.Once
	err  error
}

func (w *watch) listen(hk *hotkey.Hotkey, fire func()) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Hotkey source: recovered from panic in listener for '%s': %v", w.name, r)
		}
	}()
	for {
		select {
		case <-w.stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			fire()
		}
	}
}

// Release unregisters every variant and waits for the listeners to exit.
func (w *watch) Release() error {
	w.once.Do(func() {
		close(w.stopCh)
		var errs []error
		for _, hk := range w.hotkeys {
			if err := hk.Unregister(); err != nil {
				errs = append(errs, fmt.Errorf("failed to unregister hotkey '%s': %w", w.name, err))
			}
		}
		w.wg.Wait()
		w.err = errors.Join(errs...)
		if w.err == nil {
			log.Printf("Hotkey source: unregistered toggle hotkey '%s'", w.name)
		}
	})
	return w.err
}
