//go:build linux

package hotkey

import "golang.design/x/hotkey"

// XGrabKey matches the modifier state exactly, so an active CapsLock
// (LockMask) or NumLock (usually Mod2) would hide the toggle.
const lockMask hotkey.Modifier = 1 << 1

var lockVariants = [][]hotkey.Modifier{
	nil,
	{hotkey.Mod2},
	{lockMask},
	{hotkey.Mod2, lockMask},
}

// expandModifiers returns one modifier set per lock state.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	out := make([][]hotkey.Modifier, 0, len(lockVariants))
	for _, locks := range lockVariants {
		set := append([]hotkey.Modifier(nil), modifiers...)
		out = append(out, append(set, locks...))
	}
	return out
}
