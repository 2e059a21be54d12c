//go:build !windows

package backend

import (
	"log"
	"sync"
	"time"

	gohook "github.com/robotn/gohook"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

func init() {
	factories[Gohook] = func() hook.Backend { return NewGohookBackend() }
	defaultBackend = Gohook
}

// gohookNames maps canonical key names to gohook's keycode table where the
// spelling differs. gohook reports left-side modifiers under the generic name.
var gohookNames = map[keys.Key]string{
	keys.LeftCtrl:     "ctrl",
	keys.RightCtrl:    "rctrl",
	keys.LeftAlt:      "alt",
	keys.RightAlt:     "ralt",
	keys.LeftShift:    "shift",
	keys.RightShift:   "rshift",
	keys.LeftWindows:  "cmd",
	keys.RightWindows: "rcmd",
}

// gohookKeys resolves every known key name to a gohook keycode.
func gohookKeys() map[uint16]keys.Key {
	candidates := []keys.Key{keys.Enter, keys.Esc, keys.Space, keys.Tab}
	for _, t := range keys.TriggerKeys() {
		candidates = append(candidates, t.Key)
	}
	for _, s := range keys.SecondaryTriggers() {
		candidates = append(candidates, s.Key())
	}
	for k := range gohookNames {
		candidates = append(candidates, k)
	}

	out := make(map[uint16]keys.Key, len(candidates))
	for _, k := range candidates {
		name := string(k)
		if alt, ok := gohookNames[k]; ok {
			name = alt
		}
		code, ok := gohook.Keycode[name]
		if !ok {
			log.Printf("Gohook backend: no keycode for '%s', key will not be observed", k)
			continue
		}
		out[code] = k
	}
	return out
}

// GohookBackend observes the keyboard through libuiohook. It cannot consume
// events: suppressing hooks still see every transition, but the foreground
// application receives the keystroke as well. Send is therefore a no-op, the
// original keystroke was never taken away.
type GohookBackend struct {
	*hook.Router

	mu      sync.Mutex
	codes   map[uint16]keys.Key
	events  chan gohook.Event
	done    chan struct{}
	closed  bool
	display DisplayServer
}

var _ hook.Backend = (*GohookBackend)(nil)

// NewGohookBackend returns an unstarted backend.
func NewGohookBackend() *GohookBackend {
	return &GohookBackend{
		Router:  hook.NewRouter(),
		codes:   gohookKeys(),
		display: DetectDisplayServer(),
	}
}

func (b *GohookBackend) Name() string { return "gohook (observe only)" }

// IsAvailable is false on Wayland sessions without an X display, where
// libuiohook receives no global key events.
func (b *GohookBackend) IsAvailable() bool {
	switch b.display {
	case DisplayServerX11, DisplayServerMacOS:
		return true
	default:
		log.Printf("Gohook backend: not available on %s", b.display)
		return false
	}
}

func (b *GohookBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return hook.ErrClosed
	}
	if b.events != nil {
		return nil
	}
	log.Println("Warning: Gohook backend cannot suppress keys; bare function keys and combo keys also reach the focused application")
	b.events = gohook.Start()
	b.done = make(chan struct{})
	go b.loop(b.events, b.done)
	return nil
}

func (b *GohookBackend) loop(events chan gohook.Event, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Gohook backend: recovered from panic in event loop: %v", r)
		}
	}()
	for ev := range events {
		var typ hook.EventType
		switch ev.Kind {
		case gohook.KeyHold:
			typ = hook.KeyDown
		case gohook.KeyUp:
			typ = hook.KeyUp
		default:
			// KeyDown is libuiohook's "typed" event and duplicates KeyHold.
			continue
		}
		key, ok := b.codes[ev.Keycode]
		if !ok {
			continue
		}
		b.Router.Dispatch(hook.Event{Key: key, Type: typ})
	}
}

// Send does nothing: the observed keystroke already reached the application.
func (b *GohookBackend) Send(key keys.Key) error {
	if !keys.Known(key) {
		return hook.ErrUnknownKey
	}
	return nil
}

// IsPressed answers from the transitions observed so far.
func (b *GohookBackend) IsPressed(key keys.Key) (bool, error) {
	if !keys.Known(key) {
		return false, hook.ErrUnknownKey
	}
	return b.Router.Held(key), nil
}

func (b *GohookBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.Router.Close()
	if b.events != nil {
		gohook.End()
		select {
		case <-b.done:
			log.Println("Gohook backend: stopped")
		case <-time.After(2 * time.Second):
			log.Println("Warning: Gohook backend: event loop did not exit")
		}
	}
	return nil
}
