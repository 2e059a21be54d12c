package engine

import (
	"fmt"
	"log"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// Action is what a combo does when it fires.
type Action int

const (
	OpenFolder Action = iota
	LaunchShortcut
)

func (a Action) String() string {
	if a == OpenFolder {
		return "open folder"
	}
	return "launch shortcut"
}

// ComboBinding maps one trigger+second-key chord to an action. Secondary is
// zero for OpenFolder bindings.
type ComboBinding struct {
	Trigger   keys.TriggerKey
	Secondary keys.SecondaryTrigger
	Action    Action
}

// Chord returns the key pair the binding listens for.
func (b ComboBinding) Chord() hook.Chord {
	if b.Action == OpenFolder {
		return hook.Chord{Trigger: b.Trigger.Key, Key: keys.Confirm}
	}
	return hook.Chord{Trigger: b.Trigger.Key, Key: b.Secondary.Key()}
}

func (b ComboBinding) String() string { return b.Chord().String() }

// Bindings returns every combo: trigger+enter and trigger+symbol for all
// twelve trigger keys, in trigger order.
func Bindings() []ComboBinding {
	triggers := keys.TriggerKeys()
	secondaries := keys.SecondaryTriggers()
	out := make([]ComboBinding, 0, len(triggers)*(len(secondaries)+1))
	for _, t := range triggers {
		out = append(out, ComboBinding{Trigger: t, Action: OpenFolder})
		for _, s := range secondaries {
			out = append(out, ComboBinding{Trigger: t, Secondary: s, Action: LaunchShortcut})
		}
	}
	return out
}

// ComboDispatcher owns the registrations for every binding.
type ComboDispatcher struct {
	backend  hook.Backend
	state    *ModeState
	actions  Actions
	worker   *worker
	bindings []ComboBinding
	live     handleSet
}

func newComboDispatcher(backend hook.Backend, state *ModeState, actions Actions, w *worker) *ComboDispatcher {
	return &ComboDispatcher{
		backend:  backend,
		state:    state,
		actions:  actions,
		worker:   w,
		bindings: Bindings(),
	}
}

// Install registers every binding. A failure releases the chords registered
// so far.
func (d *ComboDispatcher) Install() error {
	if d.live.len() > 0 {
		return nil
	}
	for _, b := range d.bindings {
		b := b
		h, err := d.backend.AddHotkey(b.Chord(), func() { d.fire(b) })
		if err != nil {
			if rerr := d.live.releaseAll(); rerr != nil {
				log.Printf("Combo dispatcher: cleanup after failed install: %v", rerr)
			}
			return fmt.Errorf("register combo %s: %w", b, err)
		}
		d.live.add(b.String(), h)
	}
	log.Printf("Combo dispatcher: registered %d combos", d.live.len())
	return nil
}

// Remove releases every registered chord.
func (d *ComboDispatcher) Remove() {
	n := d.live.len()
	if err := d.live.releaseAll(); err != nil {
		log.Printf("Combo dispatcher: error releasing combos: %v", err)
	}
	if n > 0 {
		log.Printf("Combo dispatcher: released %d combos", n)
	}
}

// Installed reports how many chords are registered.
func (d *ComboDispatcher) Installed() int { return d.live.len() }

// fire runs on the hook thread. The collaborator call goes to the worker.
func (d *ComboDispatcher) fire(b ComboBinding) {
	if d.state.Inert() {
		return
	}
	switch b.Action {
	case OpenFolder:
		d.worker.submit(b.String(), func() {
			if !d.actions.OpenFolder(b.Trigger) {
				log.Printf("Combo dispatcher: could not open folder for %s", b.Trigger.Label)
			}
		})
	case LaunchShortcut:
		d.worker.submit(b.String(), func() {
			if !d.actions.LaunchShortcut(b.Trigger, b.Secondary) {
				log.Printf("Combo dispatcher: no shortcut launched for %s", b)
			}
		})
	}
}
