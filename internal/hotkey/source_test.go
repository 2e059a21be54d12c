package hotkey

import (
	"testing"

	"github.com/TanaroSch/powerkey/internal/keys"
)

func TestModifierFamily(t *testing.T) {
	tests := map[string]string{
		"win":           "win",
		"Super":         "win",
		"cmd":           "win",
		"ctrl":          "ctrl",
		"left ctrl":     "ctrl",
		"rctrl":         "ctrl",
		"right alt":     "alt",
		"shift":         "shift",
		"left windows":  "win",
		"right windows": "win",
	}
	for in, want := range tests {
		if got := modifierFamily(in); got != want {
			t.Errorf("modifierFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseToggleRejectsUnmappedKey(t *testing.T) {
	if _, _, err := parseToggle(keys.Toggle{Modifier: "win", Trigger: "f1"}); err == nil {
		t.Error("parseToggle(win+f1) error = nil, want unsupported key")
	}
}

func TestKeyMapCoversToggleKeys(t *testing.T) {
	for _, hk := range []string{"win+esc", "ctrl+space", "alt+tab"} {
		tg, err := keys.ParseToggle(hk)
		if err != nil {
			t.Fatalf("ParseToggle(%q) error = %v", hk, err)
		}
		if _, ok := KeyMap[tg.Trigger]; !ok {
			t.Errorf("KeyMap has no entry for %q", tg.Trigger)
		}
	}
}
