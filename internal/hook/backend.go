// Package hook defines the boundary between the interception engine and the
// OS-wide keyboard hook, plus the dispatch table every backend shares.
package hook

import (
	"errors"
	"fmt"

	"github.com/TanaroSch/powerkey/internal/keys"
)

var (
	// ErrClosed is returned when registering on a backend that has shut down.
	ErrClosed = errors.New("hook backend closed")
	// ErrUnknownKey is returned for keys the backend cannot observe.
	ErrUnknownKey = errors.New("unknown key")
)

// EventType distinguishes key-down from key-up transitions.
type EventType int

const (
	KeyDown EventType = iota
	KeyUp
)

func (t EventType) String() string {
	if t == KeyUp {
		return "up"
	}
	return "down"
}

// Event is one raw key transition delivered by the OS hook.
type Event struct {
	Key  keys.Key
	Type EventType
	// Injected marks keystrokes synthesized by Backend.Send. They bypass every
	// registered hook.
	Injected bool
}

func (e Event) String() string {
	if e.Injected {
		return fmt.Sprintf("%s %s (injected)", e.Key, e.Type)
	}
	return fmt.Sprintf("%s %s", e.Key, e.Type)
}

// Handler receives events for a hooked key. It runs on the hook thread and
// must not block.
type Handler func(Event)

// Chord is a trigger key held while a second key goes down.
type Chord struct {
	Trigger keys.Key
	Key     keys.Key
}

func (c Chord) String() string { return keys.Chord(c.Trigger, c.Key) }

// Handle is a registration token. Release is idempotent.
type Handle interface {
	Release() error
}

// Backend abstracts the OS-wide keyboard hook.
type Backend interface {
	// Name returns a human-readable name for logging.
	Name() string

	// IsAvailable reports whether the backend can run on this system.
	IsAvailable() bool

	// Start installs the OS hook. Registrations made before Start take effect
	// once events begin to flow.
	Start() error

	// HookKey calls fn for every transition of key. When suppress is true the
	// event is consumed and never reaches the foreground application.
	HookKey(key keys.Key, suppress bool, fn Handler) (Handle, error)

	// AddHotkey registers a suppressing chord that fires once when chord.Key
	// and chord.Trigger are down together, in either order. It never fires
	// while Ctrl, Alt or Win is held.
	AddHotkey(chord Chord, fn func()) (Handle, error)

	// Send synthesizes one down+up keystroke for key. The synthesized events
	// are delivered with Injected set and bypass every hook.
	Send(key keys.Key) error

	// IsPressed reads the live physical state of key.
	IsPressed(key keys.Key) (bool, error)

	// Serialize runs fn while no event is being dispatched.
	Serialize(fn func())

	// Snapshot lists the live registrations in a stable order.
	Snapshot() []string

	// Close removes the OS hook and releases every registration.
	Close() error
}
