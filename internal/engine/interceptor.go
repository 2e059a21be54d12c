package engine

import (
	"fmt"
	"log"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// interceptedKey is one suppressed trigger key. handle is nil while the key
// is not hooked. It is only touched from the hook thread or inside
// Backend.Serialize.
type interceptedKey struct {
	trigger keys.TriggerKey
	handler hook.Handler
	handle  hook.Handle
}

// SingleKeyInterceptor suppresses bare presses of the uncommon trigger keys
// and relays presses made with a modifier held.
type SingleKeyInterceptor struct {
	backend hook.Backend
	state   *ModeState
	probe   *ModifierProbe
	relay   *PassThroughRelay
	keys    []*interceptedKey
}

func newSingleKeyInterceptor(backend hook.Backend, state *ModeState, probe *ModifierProbe, relay *PassThroughRelay) *SingleKeyInterceptor {
	s := &SingleKeyInterceptor{
		backend: backend,
		state:   state,
		probe:   probe,
		relay:   relay,
	}
	for _, tk := range keys.UncommonTriggerKeys() {
		k := &interceptedKey{trigger: tk}
		k.handler = s.handlerFor(k)
		s.keys = append(s.keys, k)
	}
	return s
}

func (s *SingleKeyInterceptor) handlerFor(k *interceptedKey) hook.Handler {
	return func(ev hook.Event) {
		if ev.Type != hook.KeyDown || s.state.Inert() {
			return
		}
		if !s.probe.IsAnyModifierHeld() {
			// Bare press: stays suppressed and only feeds the combo layer.
			return
		}
		if err := s.relay.Relay(k); err != nil {
			log.Printf("Interceptor: relay of %s failed: %v", k.trigger.Label, err)
		}
	}
}

// Install hooks every uncommon trigger key. On failure the keys hooked so far
// are released again and the interceptor stays uninstalled.
func (s *SingleKeyInterceptor) Install() error {
	for i, k := range s.keys {
		if k.handle != nil {
			continue
		}
		h, err := s.backend.HookKey(k.trigger.Key, true, k.handler)
		if err != nil {
			for _, done := range s.keys[:i] {
				s.release(done)
			}
			return fmt.Errorf("hook %s: %w", k.trigger.Label, err)
		}
		k.handle = h
	}
	log.Printf("Interceptor: suppressing %d trigger keys", len(s.keys))
	return nil
}

// Remove releases every hook the interceptor holds.
func (s *SingleKeyInterceptor) Remove() {
	for _, k := range s.keys {
		s.release(k)
	}
	log.Println("Interceptor: all single-key hooks released")
}

func (s *SingleKeyInterceptor) release(k *interceptedKey) {
	if k.handle == nil {
		return
	}
	if err := k.handle.Release(); err != nil {
		log.Printf("Interceptor: error releasing hook for %s: %v", k.trigger.Label, err)
	}
	k.handle = nil
}

// Hooked lists the labels of the keys currently hooked.
func (s *SingleKeyInterceptor) Hooked() []string {
	var out []string
	for _, k := range s.keys {
		if k.handle != nil {
			out = append(out, k.trigger.Label)
		}
	}
	return out
}
