package keys

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTrigger is returned when a name is not one of F1..F12.
var ErrUnknownTrigger = errors.New("unknown trigger key")

// ErrUnknownSecondary is returned when a name is not a letter or digit.
var ErrUnknownSecondary = errors.New("unknown secondary trigger")

// TriggerKey is a function key repurposed for custom actions.
type TriggerKey struct {
	Key   Key    // "f1".."f12"
	Label string // "F1".."F12", also the shortcut folder name
	// Common keys keep their native function on a bare press and are never
	// hooked at the single-key layer.
	Common bool
}

func (t TriggerKey) String() string { return t.Label }

// commonKeys are the F keys whose native meaning is too useful to swallow:
// rename, search, close, refresh, fullscreen and developer console.
var commonKeys = map[Key]bool{
	"f2":  true,
	"f3":  true,
	"f4":  true,
	"f5":  true,
	"f11": true,
	"f12": true,
}

var (
	triggerKeys  []TriggerKey
	triggerIndex = make(map[Key]int)
)

func init() {
	for i := 1; i <= 12; i++ {
		k := Key(fmt.Sprintf("f%d", i))
		triggerIndex[k] = len(triggerKeys)
		triggerKeys = append(triggerKeys, TriggerKey{
			Key:    k,
			Label:  fmt.Sprintf("F%d", i),
			Common: commonKeys[k],
		})
	}
}

// TriggerKeys returns F1..F12 in order. The slice is a copy.
func TriggerKeys() []TriggerKey {
	out := make([]TriggerKey, len(triggerKeys))
	copy(out, triggerKeys)
	return out
}

// UncommonTriggerKeys returns the trigger keys that get a suppressing hook.
func UncommonTriggerKeys() []TriggerKey {
	var out []TriggerKey
	for _, t := range triggerKeys {
		if !t.Common {
			out = append(out, t)
		}
	}
	return out
}

// ParseTrigger accepts "f1", "F1" and similar.
func ParseTrigger(name string) (TriggerKey, error) {
	i, ok := triggerIndex[Normalize(name)]
	if !ok {
		return TriggerKey{}, fmt.Errorf("%w: %q", ErrUnknownTrigger, name)
	}
	return triggerKeys[i], nil
}

// SecondaryTrigger is a letter or digit used as the second key of a combo.
// It is always stored lower-case.
type SecondaryTrigger byte

const secondarySymbols = "abcdefghijklmnopqrstuvwxyz0123456789"

// SecondaryTriggers returns all 36 symbols, letters first.
func SecondaryTriggers() []SecondaryTrigger {
	out := make([]SecondaryTrigger, 0, len(secondarySymbols))
	for i := 0; i < len(secondarySymbols); i++ {
		out = append(out, SecondaryTrigger(secondarySymbols[i]))
	}
	return out
}

// ParseSecondary folds case: "A" and "a" are the same trigger.
func ParseSecondary(name string) (SecondaryTrigger, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if len(s) != 1 || !strings.Contains(secondarySymbols, s) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSecondary, name)
	}
	return SecondaryTrigger(s[0]), nil
}

// Key returns the physical key for the symbol.
func (s SecondaryTrigger) Key() Key { return Key(string(rune(s))) }

func (s SecondaryTrigger) String() string { return string(rune(s)) }
