package keys

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidToggle is returned for toggle hotkeys that are malformed or that
// collide with the combo keys.
var ErrInvalidToggle = errors.New("invalid toggle hotkey")

// Toggle is the mode-toggle hotkey: a modifier that must be held when the
// trigger key goes down.
type Toggle struct {
	// Modifier is either a windows alias ("win") or a canonical key name.
	Modifier string
	Trigger  Key
}

func (t Toggle) String() string {
	return t.Modifier + "+" + string(t.Trigger)
}

// ParseToggle parses "modifier+key", e.g. "win+esc". Neither half may be a
// trigger key, a secondary trigger or the confirm key, since the combo layer
// would consume those events before the toggle listener sees them.
func ParseToggle(value string) (Toggle, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(value)), "+")
	if len(parts) != 2 {
		return Toggle{}, fmt.Errorf("%w: %q must look like \"win+esc\"", ErrInvalidToggle, value)
	}
	modName := strings.TrimSpace(parts[0])
	trigger := Normalize(parts[1])
	if modName == "" || trigger == "" {
		return Toggle{}, fmt.Errorf("%w: %q has an empty part", ErrInvalidToggle, value)
	}

	var modifier string
	if IsWindowsAlias(modName) {
		modifier = "win"
	} else {
		mk := Normalize(modName)
		if err := checkToggleKey(mk, "modifier"); err != nil {
			return Toggle{}, fmt.Errorf("%w: %q: %v", ErrInvalidToggle, value, err)
		}
		modifier = string(mk)
	}
	if err := checkToggleKey(trigger, "key"); err != nil {
		return Toggle{}, fmt.Errorf("%w: %q: %v", ErrInvalidToggle, value, err)
	}
	if IsModifier(trigger) {
		return Toggle{}, fmt.Errorf("%w: %q: key %q is a modifier", ErrInvalidToggle, value, trigger)
	}
	return Toggle{Modifier: modifier, Trigger: trigger}, nil
}

func checkToggleKey(k Key, role string) error {
	switch {
	case !Known(k):
		return fmt.Errorf("%s %q is not a known key", role, k)
	case k.IsFunctionKey():
		return fmt.Errorf("%s %q is a trigger key", role, k)
	case k == Confirm:
		return fmt.Errorf("%s %q is the confirm key", role, k)
	}
	if _, err := ParseSecondary(string(k)); err == nil {
		return fmt.Errorf("%s %q is a secondary trigger", role, k)
	}
	return nil
}
