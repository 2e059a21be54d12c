//go:build !windows && !linux && !darwin

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// parseToggle is not implemented on this OS.
func parseToggle(t keys.Toggle) ([]hotkey.Modifier, hotkey.Key, error) {
	return nil, 0, fmt.Errorf("hotkeys are not supported on this OS")
}
