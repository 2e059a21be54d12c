package keys

import (
	"fmt"
	"strings"
)

// Key is a canonical, lower-case key name such as "f1", "a", "enter" or "left ctrl".
type Key string

// Canonical names for the non-printable keys the application cares about.
const (
	Enter        Key = "enter"
	Esc          Key = "esc"
	Space        Key = "space"
	Tab          Key = "tab"
	Ctrl         Key = "ctrl"
	LeftCtrl     Key = "left ctrl"
	RightCtrl    Key = "right ctrl"
	Alt          Key = "alt"
	LeftAlt      Key = "left alt"
	RightAlt     Key = "right alt"
	Shift        Key = "shift"
	LeftShift    Key = "left shift"
	RightShift   Key = "right shift"
	LeftWindows  Key = "left windows"
	RightWindows Key = "right windows"
)

// Confirm is the second key of the open-folder combo (Fx+Enter).
const Confirm = Enter

// aliases maps alternative spellings to canonical names.
var aliases = map[string]Key{
	"escape":  Esc,
	"return":  Enter,
	"control": Ctrl,
	"lctrl":   LeftCtrl,
	"rctrl":   RightCtrl,
	"lalt":    LeftAlt,
	"ralt":    RightAlt,
	"lshift":  LeftShift,
	"rshift":  RightShift,
	"lwin":    LeftWindows,
	"rwin":    RightWindows,
	"lcmd":    LeftWindows,
	"rcmd":    RightWindows,
	"option":  Alt,
}

// Normalize folds case, trims whitespace and resolves aliases.
func Normalize(name string) Key {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Join(strings.Fields(n), " ")
	if k, ok := aliases[n]; ok {
		return k
	}
	return Key(n)
}

func (k Key) String() string { return string(k) }

// IsFunctionKey reports whether k is one of F1..F12.
func (k Key) IsFunctionKey() bool {
	_, ok := triggerIndex[k]
	return ok
}

// modifierSides lists the physical keys behind each generic modifier name.
var modifierSides = map[Key][]Key{
	Ctrl:  {LeftCtrl, RightCtrl},
	Alt:   {LeftAlt, RightAlt},
	Shift: {LeftShift, RightShift},
}

// Sides returns the left/right variants of a generic modifier, or nil.
func Sides(k Key) []Key {
	return modifierSides[k]
}

// Modifiers is every modifier name the probe checks: generic and sided
// ctrl/alt/shift plus either windows key.
func Modifiers() []Key {
	return []Key{
		Ctrl, LeftCtrl, RightCtrl,
		Alt, LeftAlt, RightAlt,
		Shift, LeftShift, RightShift,
		LeftWindows, RightWindows,
	}
}

// IsModifier reports whether k is a modifier key.
func IsModifier(k Key) bool {
	for _, m := range Modifiers() {
		if m == k {
			return true
		}
	}
	return false
}

// IsWindowsAlias reports whether name refers to "either windows key".
func IsWindowsAlias(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "win", "windows", "super", "cmd", "meta":
		return true
	}
	return false
}

// Known reports whether k is a key this package can name.
func Known(k Key) bool {
	if k.IsFunctionKey() || IsModifier(k) {
		return true
	}
	if _, err := ParseSecondary(string(k)); err == nil {
		return true
	}
	switch k {
	case Enter, Esc, Space, Tab:
		return true
	}
	return false
}

// Chord is a two-key combination written "trigger+key".
func Chord(trigger, key Key) string {
	return fmt.Sprintf("%s+%s", trigger, key)
}
