package engine

import (
	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// ToggleSource delivers activations of the pass-through toggle hotkey.
//
// fn must be called while no keyboard event is being dispatched: either from
// inside a hook handler, or wrapped in Backend.Serialize by sources that run
// on their own goroutine.
type ToggleSource interface {
	Watch(t keys.Toggle, fn func()) (hook.Handle, error)
}

// hookToggleSource watches the toggle key with an observe-only hook and
// checks the modifier with the live probe. It is the default source.
type hookToggleSource struct {
	backend hook.Backend
	probe   *ModifierProbe
}

// NewHookToggleSource returns the default toggle source for backend.
func NewHookToggleSource(backend hook.Backend) ToggleSource {
	return &hookToggleSource{backend: backend, probe: NewModifierProbe(backend)}
}

func (s *hookToggleSource) Watch(t keys.Toggle, fn func()) (hook.Handle, error) {
	return s.backend.HookKey(t.Trigger, false, func(ev hook.Event) {
		if ev.Type != hook.KeyDown {
			return
		}
		if !s.probe.IsRequiredModifierHeld(t.Modifier) {
			return
		}
		fn()
	})
}
