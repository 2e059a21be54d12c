// Package hooktest provides a simulated OS keyboard for exercising code built
// on hook.Backend without touching a real input hook.
package hooktest

import (
	"errors"
	"sync"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// ErrInjected is returned by registrations failed on purpose with FailHooks.
var ErrInjected = errors.New("injected hook failure")

// Backend routes events through a real hook.Router and records what the
// foreground application would have seen.
type Backend struct {
	*hook.Router

	mu        sync.Mutex
	pending   []hook.Event
	delivered []hook.Event
	failHooks int
	pressErr  error
	lost      map[keys.Key]bool // physically up, but the release was never dispatched
	started   bool
	closed    bool
}

var _ hook.Backend = (*Backend)(nil)

// New returns an empty simulated backend.
func New() *Backend {
	b := &Backend{Router: hook.NewRouter(), lost: make(map[keys.Key]bool)}
	b.Router.SetLiveState(hook.LiveState{Pressed: b.physical, SeesSwallowed: true})
	return b
}

// physical is the simulated hardware state: observed by the router unless
// the release was lost.
func (b *Backend) physical(key keys.Key) (bool, error) {
	check := []keys.Key{key}
	if sides := keys.Sides(key); sides != nil {
		check = sides
	}
	for _, k := range check {
		b.mu.Lock()
		lost := b.lost[k]
		b.mu.Unlock()
		if !lost && b.Router.Held(k) {
			return true, nil
		}
	}
	return false, nil
}

func (b *Backend) Name() string      { return "Simulated" }
func (b *Backend) IsAvailable() bool { return true }

func (b *Backend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return hook.ErrClosed
	}
	b.started = true
	return nil
}

// HookKey delegates to the router unless a failure was armed with FailHooks.
func (b *Backend) HookKey(key keys.Key, suppress bool, fn hook.Handler) (hook.Handle, error) {
	b.mu.Lock()
	if b.failHooks > 0 {
		b.failHooks--
		b.mu.Unlock()
		return nil, ErrInjected
	}
	b.mu.Unlock()
	return b.Router.HookKey(key, suppress, fn)
}

// Send queues an injected down+up pair, delivered after the current event.
func (b *Backend) Send(key keys.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending,
		hook.Event{Key: key, Type: hook.KeyDown, Injected: true},
		hook.Event{Key: key, Type: hook.KeyUp, Injected: true},
	)
	return nil
}

// IsPressed answers from the router's observed state, or fails when a probe
// error was armed with FailProbe.
func (b *Backend) IsPressed(key keys.Key) (bool, error) {
	b.mu.Lock()
	err := b.pressErr
	b.mu.Unlock()
	if err != nil {
		return false, err
	}
	return b.physical(key)
}

func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.Router.Close()
	return nil
}

// Started reports whether Start was called.
func (b *Backend) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// FailHooks makes the next n HookKey calls fail.
func (b *Backend) FailHooks(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failHooks = n
}

// FailProbe makes IsPressed return err until called again with nil.
func (b *Backend) FailProbe(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressErr = err
}

// Down simulates a physical key-down.
func (b *Backend) Down(key keys.Key) {
	b.mu.Lock()
	delete(b.lost, key)
	b.mu.Unlock()
	b.feed(hook.Event{Key: key, Type: hook.KeyDown})
}

// LoseKeyUp releases key physically without the hook seeing it, as happens
// when the secure desktop takes the keyboard.
func (b *Backend) LoseKeyUp(key keys.Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lost[key] = true
}

// Up simulates a physical key-up.
func (b *Backend) Up(key keys.Key) { b.feed(hook.Event{Key: key, Type: hook.KeyUp}) }

// Tap presses and releases key.
func (b *Backend) Tap(key keys.Key) {
	b.Down(key)
	b.Up(key)
}

// Combo holds each of held, taps key, then releases held in reverse order.
func (b *Backend) Combo(key keys.Key, held ...keys.Key) {
	for _, h := range held {
		b.Down(h)
	}
	b.Tap(key)
	for i := len(held) - 1; i >= 0; i-- {
		b.Up(held[i])
	}
}

func (b *Backend) feed(ev hook.Event) {
	if !b.Router.Dispatch(ev) {
		b.deliver(ev)
	}
	for {
		b.mu.Lock()
		if len(b.pending) == 0 {
			b.mu.Unlock()
			return
		}
		next := b.pending[0]
		b.pending = b.pending[1:]
		b.mu.Unlock()
		if !b.Router.Dispatch(next) {
			b.deliver(next)
		}
	}
}

func (b *Backend) deliver(ev hook.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delivered = append(b.delivered, ev)
}

// Delivered returns every event the foreground application received.
func (b *Backend) Delivered() []hook.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]hook.Event(nil), b.delivered...)
}

// Keystrokes counts key-down events of key that reached the application.
func (b *Backend) Keystrokes(key keys.Key) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ev := range b.delivered {
		if ev.Key == key && ev.Type == hook.KeyDown {
			n++
		}
	}
	return n
}

// Reset forgets delivered events.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delivered = nil
}
