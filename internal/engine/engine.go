// Package engine turns the function keys into launch triggers on top of a
// hook.Backend: bare presses of uncommon keys are swallowed, modified presses
// are relayed, trigger combos launch shortcuts, and a toggle hotkey switches
// the whole thing off for games.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("engine already started")

const defaultQueueSize = 64

// Options tunes an Engine. The zero value is usable.
type Options struct {
	// ToggleHotkey defaults to "win+esc".
	ToggleHotkey string
	// Debounce defaults to DefaultToggleDebounce.
	Debounce time.Duration
	// QueueSize bounds the action worker queue.
	QueueSize int
	// ToggleSource defaults to an observe-only hook on the backend.
	ToggleSource ToggleSource
	// OnFatal is called when a relayed key cannot be hooked again. It runs on
	// its own goroutine and may call Stop.
	OnFatal func(error)
	// Now replaces time.Now for debounce.
	Now func() time.Time
	// RelayRetries and RelayRetryDelay bound re-hooking after a relay.
	RelayRetries    int
	RelayRetryDelay time.Duration
}

// Engine wires the components together and owns their lifecycle.
type Engine struct {
	backend     hook.Backend
	toggle      keys.Toggle
	source      ToggleSource
	state       *ModeState
	worker      *worker
	interceptor *SingleKeyInterceptor
	combos      *ComboDispatcher
	controller  *ModeController

	mu           sync.Mutex
	started      bool
	stopped      bool
	toggleHandle hook.Handle
}

// New builds an engine. Nothing is hooked until Start.
func New(backend hook.Backend, actions Actions, opts Options) (*Engine, error) {
	if backend == nil {
		return nil, errors.New("engine: nil backend")
	}
	if actions == nil {
		return nil, errors.New("engine: nil actions")
	}
	hotkey := opts.ToggleHotkey
	if hotkey == "" {
		hotkey = "win+esc"
	}
	toggle, err := keys.ParseToggle(hotkey)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultToggleDebounce
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RelayRetries <= 0 {
		opts.RelayRetries = defaultRelayRetries
	}
	if opts.RelayRetryDelay <= 0 {
		opts.RelayRetryDelay = defaultRelayRetryDelay
	}
	if opts.ToggleSource == nil {
		opts.ToggleSource = NewHookToggleSource(backend)
	}

	e := &Engine{
		backend: backend,
		toggle:  toggle,
		source:  opts.ToggleSource,
		state:   &ModeState{},
		worker:  newWorker(opts.QueueSize),
	}
	onFatal := opts.OnFatal
	relay := &PassThroughRelay{
		backend:    backend,
		retries:    opts.RelayRetries,
		retryDelay: opts.RelayRetryDelay,
		onFatal: func(err error) {
			if onFatal != nil {
				go onFatal(err)
			}
		},
	}
	probe := NewModifierProbe(backend)
	e.interceptor = newSingleKeyInterceptor(backend, e.state, probe, relay)
	e.combos = newComboDispatcher(backend, e.state, actions, e.worker)
	e.controller = &ModeController{
		backend:     backend,
		state:       e.state,
		interceptor: e.interceptor,
		combos:      e.combos,
		actions:     actions,
		worker:      e.worker,
		debounce:    opts.Debounce,
		now:         opts.Now,
	}
	return e, nil
}

// Start starts the backend and installs the intercepting hook set and the
// toggle listener. On failure everything registered so far is released.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return hook.ErrClosed
	}
	if e.started {
		return ErrAlreadyStarted
	}

	log.Printf("Engine: starting with %s backend, toggle %s", e.backend.Name(), e.toggle)
	if err := e.backend.Start(); err != nil {
		return fmt.Errorf("start %s backend: %w", e.backend.Name(), err)
	}

	var err error
	e.backend.Serialize(func() {
		if err = e.controller.installLive(); err != nil {
			return
		}
		var h hook.Handle
		h, err = e.source.Watch(e.toggle, func() { e.controller.tryToggle() })
		if err != nil {
			e.controller.removeLive()
			err = fmt.Errorf("toggle listener %s: %w", e.toggle, err)
			return
		}
		e.toggleHandle = h
	})
	if err != nil {
		return err
	}
	e.started = true
	log.Printf("Engine: intercepting, %d keys hooked, %d combos", len(e.interceptor.Hooked()), e.combos.Installed())
	return nil
}

// Stop releases the toggle listener first so no transition can race the
// teardown, then the live hook set. Queued actions are drained until ctx
// expires; the backend is closed last.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	e.stopped = true
	e.state.stopping.Store(true)

	var errs []error
	// Released outside Serialize: a hotkey listener may be waiting in
	// Serialize itself, and stopping already makes any toggle a no-op.
	if e.toggleHandle != nil {
		if err := e.toggleHandle.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release toggle listener: %w", err))
		}
		e.toggleHandle = nil
	}
	e.backend.Serialize(e.controller.removeLive)

	e.worker.close()
	select {
	case <-e.worker.Done():
	case <-ctx.Done():
		log.Printf("Warning: Engine: stopped before queued actions finished: %v", ctx.Err())
		errs = append(errs, ctx.Err())
	}

	if err := e.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s backend: %w", e.backend.Name(), err))
	}
	log.Println("Engine: stopped")
	return errors.Join(errs...)
}

// Mode returns the live mode.
func (e *Engine) Mode() Mode { return e.state.Current() }

// Toggle flips the mode from outside the hook thread.
func (e *Engine) Toggle() bool { return e.controller.Toggle() }

// ToggleHotkey returns the parsed toggle hotkey.
func (e *Engine) ToggleHotkey() keys.Toggle { return e.toggle }

// Snapshot lists the live registrations, for diagnostics and tests.
func (e *Engine) Snapshot() []string { return e.backend.Snapshot() }
