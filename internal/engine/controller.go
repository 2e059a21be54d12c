package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/TanaroSch/powerkey/internal/hook"
)

// DefaultToggleDebounce is the minimum gap between two accepted toggles.
const DefaultToggleDebounce = 300 * time.Millisecond

// ModeController switches between Intercepting and PassThrough.
//
// transition and lastToggle are only touched while no event is dispatched:
// from the toggle handler on the hook thread or inside Backend.Serialize.
type ModeController struct {
	backend     hook.Backend
	state       *ModeState
	interceptor *SingleKeyInterceptor
	combos      *ComboDispatcher
	actions     Actions
	worker      *worker
	debounce    time.Duration
	now         func() time.Time

	lastToggle time.Time
}

// Mode returns the live mode.
func (c *ModeController) Mode() Mode { return c.state.Current() }

// Toggle flips the mode from outside the hook thread, e.g. the tray menu.
// It reports whether the mode changed.
func (c *ModeController) Toggle() bool {
	changed := false
	c.backend.Serialize(func() { changed = c.tryToggle() })
	return changed
}

// tryToggle applies debounce and performs the transition.
func (c *ModeController) tryToggle() bool {
	if c.state.Stopping() {
		return false
	}
	now := c.now()
	if !c.lastToggle.IsZero() && now.Sub(c.lastToggle) < c.debounce {
		log.Printf("Mode controller: toggle ignored, %v since last toggle", now.Sub(c.lastToggle).Round(time.Millisecond))
		return false
	}

	switch c.state.Current() {
	case Intercepting:
		c.state.set(PassThrough)
		c.removeLive()
	case PassThrough:
		if err := c.installLive(); err != nil {
			log.Printf("Mode controller: could not leave pass-through mode: %v", err)
			return false
		}
		c.state.set(Intercepting)
	}
	c.lastToggle = now

	passThrough := c.state.PassThrough()
	log.Printf("Mode controller: switched to %s", c.state.Current())
	c.worker.submit("mode change", func() { c.actions.OnModeChanged(passThrough) })
	return true
}

// installLive registers the interceptor and combo sets. Either both are live
// afterwards or neither is.
func (c *ModeController) installLive() error {
	if err := c.interceptor.Install(); err != nil {
		return fmt.Errorf("single-key hooks: %w", err)
	}
	if err := c.combos.Install(); err != nil {
		c.interceptor.Remove()
		return fmt.Errorf("combos: %w", err)
	}
	return nil
}

func (c *ModeController) removeLive() {
	c.interceptor.Remove()
	c.combos.Remove()
}
