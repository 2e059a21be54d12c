package hook

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// Router is the dispatch table shared by every backend. A backend feeds raw
// events into Dispatch and suppresses the event when Dispatch returns true.
//
// Dispatch holds dispatchMu for the whole event, handlers included, so events
// are processed one at a time and Serialize can exclude them. Handlers run
// outside mu and may add or release registrations. Handlers must never call
// Serialize.
type Router struct {
	dispatchMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	hooks   map[keys.Key][]*keyHook
	hotkeys map[keys.Key][]*hotkeyEntry // indexed by Chord.Key
	held    map[keys.Key]bool
	firing  map[keys.Key]*hotkeyEntry // chord keys whose down was consumed

	// absorbing holds chord keys that were already down when their trigger
	// completed the chord: repeats are consumed, the key-up passes.
	absorbing map[keys.Key]bool
	swallowed map[keys.Key]bool // held keys whose key-down the OS never saw
	live      LiveState
	closed    bool
}

// LiveState reads key state at decision time. SeesSwallowed is true when
// Pressed also reports keys whose events a hook suppressed;
// GetAsyncKeyState does not, because the OS never records them.
type LiveState struct {
	Pressed       func(keys.Key) (bool, error)
	SeesSwallowed bool
}

// chordBlockers veto every chord while held, so Ctrl/Alt/Win combinations
// keep their native meaning. Shift is allowed.
var chordBlockers = []keys.Key{
	keys.Ctrl, keys.LeftCtrl, keys.RightCtrl,
	keys.Alt, keys.LeftAlt, keys.RightAlt,
	keys.LeftWindows, keys.RightWindows,
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		hooks:     make(map[keys.Key][]*keyHook),
		hotkeys:   make(map[keys.Key][]*hotkeyEntry),
		held:      make(map[keys.Key]bool),
		firing:    make(map[keys.Key]*hotkeyEntry),
		absorbing: make(map[keys.Key]bool),
		swallowed: make(map[keys.Key]bool),
	}
}

// SetLiveState installs a live key-state reader. Before a chord fires, the
// keys it depends on are confirmed with it where it can answer, so a key-up
// the hook never saw does not leave a trigger stuck. Pressed is called
// without any router lock held and must not call Dispatch or Serialize.
func (r *Router) SetLiveState(live LiveState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live = live
}

type keyHook struct {
	r        *Router
	id       uint64
	key      keys.Key
	suppress bool
	fn       Handler
}

func (h *keyHook) Release() error {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	list := h.r.hooks[h.key]
	for i, e := range list {
		if e.id == h.id {
			h.r.hooks[h.key] = append(list[:i:i], list[i+1:]...)
			if len(h.r.hooks[h.key]) == 0 {
				delete(h.r.hooks, h.key)
			}
			break
		}
	}
	return nil
}

type hotkeyEntry struct {
	r     *Router
	id    uint64
	chord Chord
	fn    func()
}

func (e *hotkeyEntry) Release() error {
	e.r.mu.Lock()
	defer e.r.mu.Unlock()
	list := e.r.hotkeys[e.chord.Key]
	for i, x := range list {
		if x.id == e.id {
			e.r.hotkeys[e.chord.Key] = append(list[:i:i], list[i+1:]...)
			if len(e.r.hotkeys[e.chord.Key]) == 0 {
				delete(e.r.hotkeys, e.chord.Key)
			}
			break
		}
	}
	return nil
}

// HookKey registers fn for every transition of key.
func (r *Router) HookKey(key keys.Key, suppress bool, fn Handler) (Handle, error) {
	if !keys.Known(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	r.nextID++
	h := &keyHook{r: r, id: r.nextID, key: key, suppress: suppress, fn: fn}
	r.hooks[key] = append(r.hooks[key], h)
	return h, nil
}

// AddHotkey registers a suppressing chord.
func (r *Router) AddHotkey(chord Chord, fn func()) (Handle, error) {
	if !keys.Known(chord.Trigger) || !keys.Known(chord.Key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, chord)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	r.nextID++
	e := &hotkeyEntry{r: r, id: r.nextID, chord: chord, fn: fn}
	r.hotkeys[chord.Key] = append(r.hotkeys[chord.Key], e)
	return e, nil
}

// Dispatch routes one raw event and reports whether it must be suppressed.
//
// Injected events pass straight through. A key-down that completes a
// registered chord fires the chord once and is consumed together with its
// repeats and its key-up; such an event never reaches single-key hooks. The
// chord completes either when its key goes down while the trigger is held or
// when the trigger goes down while the unconsumed key is held, and never
// while Ctrl, Alt or Win is held. Everything else goes to the key's hooks and
// is suppressed if any of them suppresses.
func (r *Router) Dispatch(ev Event) bool {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	if ev.Injected {
		return false
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}

	repeat := false
	switch ev.Type {
	case KeyDown:
		repeat = r.held[ev.Key]
		r.held[ev.Key] = true
	case KeyUp:
		delete(r.held, ev.Key)
		delete(r.swallowed, ev.Key)
	}

	if r.firing[ev.Key] != nil {
		if ev.Type == KeyUp {
			delete(r.firing, ev.Key)
		}
		r.mu.Unlock()
		return true
	}
	if r.absorbing[ev.Key] {
		if ev.Type == KeyDown {
			r.mu.Unlock()
			return true
		}
		delete(r.absorbing, ev.Key)
	}

	var candidates []chordMatch
	if ev.Type == KeyDown && !repeat {
		candidates = r.chordCandidates(ev.Key)
	}
	r.mu.Unlock()

	if m, ok := r.matchChord(candidates); ok {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return false
		}
		r.firing[ev.Key] = m.hk
		r.swallowed[ev.Key] = true
		if m.reverse {
			r.absorbing[m.other] = true
		}
		r.mu.Unlock()
		r.safeCall(m.hk.chord.String(), m.hk.fn)
		return true
	}

	r.mu.Lock()
	hooks := append([]*keyHook(nil), r.hooks[ev.Key]...)
	r.mu.Unlock()

	suppress := false
	for _, h := range hooks {
		if h.suppress {
			suppress = true
		}
		fn := h.fn
		r.safeCall(string(ev.Key), func() { fn(ev) })
	}
	if suppress && ev.Type == KeyDown {
		r.mu.Lock()
		if r.held[ev.Key] {
			r.swallowed[ev.Key] = true
		}
		r.mu.Unlock()
	}
	return suppress
}

// chordMatch is a chord that key completes, with the other key it needs held.
type chordMatch struct {
	hk      *hotkeyEntry
	other   keys.Key
	reverse bool
}

// chordCandidates lists the chords key would complete according to the
// observed state, in-order chords first. r.mu must be held.
func (r *Router) chordCandidates(key keys.Key) []chordMatch {
	var out []chordMatch
	for _, hk := range r.hotkeys[key] {
		if r.held[hk.chord.Trigger] {
			out = append(out, chordMatch{hk: hk, other: hk.chord.Trigger})
		}
	}
	for other := range r.held {
		if other == key || r.firing[other] != nil {
			continue
		}
		for _, hk := range r.hotkeys[other] {
			if hk.chord.Trigger == key {
				out = append(out, chordMatch{hk: hk, other: other, reverse: true})
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	for _, m := range chordBlockers {
		if r.held[m] {
			out = append(out, chordMatch{other: m})
		}
	}
	return out
}

// matchChord confirms candidates against the live key state. Entries with a
// nil hotkey are held blockers: one that is really down vetoes every chord.
// r.mu must not be held.
func (r *Router) matchChord(candidates []chordMatch) (chordMatch, bool) {
	if len(candidates) == 0 {
		return chordMatch{}, false
	}
	r.mu.Lock()
	live := r.live
	r.mu.Unlock()

	down := func(k keys.Key) bool {
		if live.Pressed == nil {
			return true
		}
		r.mu.Lock()
		unseen := r.swallowed[k] && !live.SeesSwallowed
		r.mu.Unlock()
		if unseen {
			return true
		}
		pressed, err := live.Pressed(k)
		if err != nil {
			log.Printf("Hook router: live state of '%s' unavailable: %v", k, err)
			return true
		}
		if !pressed {
			log.Printf("Hook router: '%s' is no longer down, dropping stale state", k)
			r.mu.Lock()
			delete(r.held, k)
			delete(r.swallowed, k)
			r.mu.Unlock()
		}
		return pressed
	}

	for _, c := range candidates {
		if c.hk == nil && down(c.other) {
			return chordMatch{}, false
		}
	}
	for _, c := range candidates {
		if c.hk != nil && down(c.other) {
			return c, true
		}
	}
	return chordMatch{}, false
}

// safeCall keeps a panicking handler from taking down the hook thread.
func (r *Router) safeCall(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Hook router: recovered from panic in handler for '%s': %v", name, rec)
		}
	}()
	fn()
}

// Serialize runs fn while no event is being dispatched.
func (r *Router) Serialize(fn func()) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	fn()
}

// Held reports the physical state the router has observed for key. Generic
// modifiers ("ctrl") are held when either side is.
func (r *Router) Held(key keys.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sides := keys.Sides(key); sides != nil {
		if r.held[key] {
			return true
		}
		for _, s := range sides {
			if r.held[s] {
				return true
			}
		}
		return false
	}
	return r.held[key]
}

// Snapshot lists the current registrations in a stable order, e.g.
// "hook f1 suppress" or "hotkey f1+a".
func (r *Router) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for k, list := range r.hooks {
		for _, h := range list {
			mode := "observe"
			if h.suppress {
				mode = "suppress"
			}
			out = append(out, fmt.Sprintf("hook %s %s", k, mode))
		}
	}
	for _, list := range r.hotkeys {
		for _, e := range list {
			out = append(out, "hotkey "+e.chord.String())
		}
	}
	sort.Strings(out)
	return out
}

// Close drops every registration; later registrations fail with ErrClosed.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.hooks = make(map[keys.Key][]*keyHook)
	r.hotkeys = make(map[keys.Key][]*hotkeyEntry)
	r.firing = make(map[keys.Key]*hotkeyEntry)
	r.absorbing = make(map[keys.Key]bool)
	r.swallowed = make(map[keys.Key]bool)
}
