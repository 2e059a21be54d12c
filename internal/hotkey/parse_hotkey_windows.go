//go:build windows

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// parseToggle converts a toggle hotkey into golang.design/x/hotkey modifiers
// and key.
func parseToggle(t keys.Toggle) ([]hotkey.Modifier, hotkey.Key, error) {
	key, exists := KeyMap[t.Trigger]
	if !exists {
		return nil, 0, fmt.Errorf("unsupported key: %s", t.Trigger)
	}

	var mod hotkey.Modifier
	switch modifierFamily(t.Modifier) {
	case "ctrl":
		mod = hotkey.ModCtrl
	case "alt":
		mod = hotkey.ModAlt
	case "shift":
		mod = hotkey.ModShift
	case "win":
		mod = hotkey.ModWin
	default:
		return nil, 0, fmt.Errorf("unsupported modifier: %s", t.Modifier)
	}
	return []hotkey.Modifier{mod}, key, nil
}
