package engine

import (
	"log"

	"github.com/TanaroSch/powerkey/internal/hook"
	"github.com/TanaroSch/powerkey/internal/keys"
)

// ModifierProbe answers "is a modifier held right now?" from live key state.
// A failed query counts as "not held", which errs toward suppressing.
type ModifierProbe struct {
	backend hook.Backend
}

// NewModifierProbe returns a probe reading from backend.
func NewModifierProbe(backend hook.Backend) *ModifierProbe {
	return &ModifierProbe{backend: backend}
}

// IsAnyModifierHeld checks ctrl, alt and shift on either side plus both
// windows keys.
func (p *ModifierProbe) IsAnyModifierHeld() bool {
	for _, k := range keys.Modifiers() {
		if p.pressed(k) {
			return true
		}
	}
	return false
}

// IsRequiredModifierHeld checks the toggle modifier. Windows aliases match
// either windows key; any other name must match exactly.
func (p *ModifierProbe) IsRequiredModifierHeld(name string) bool {
	if keys.IsWindowsAlias(name) {
		return p.pressed(keys.LeftWindows) || p.pressed(keys.RightWindows)
	}
	return p.pressed(keys.Normalize(name))
}

func (p *ModifierProbe) pressed(k keys.Key) bool {
	down, err := p.backend.IsPressed(k)
	if err != nil {
		log.Printf("Modifier probe: failed to read state of '%s', treating as released: %v", k, err)
		return false
	}
	return down
}
