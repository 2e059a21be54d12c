//go:build windows

package backend

import (
	"fmt"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// Windows virtual-key codes for the keys the application names.
const (
	vkTab      = 0x09
	vkReturn   = 0x0D
	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkEscape   = 0x1B
	vkSpace    = 0x20
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkF1       = 0x70
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

var (
	vkByKey = map[keys.Key]uint32{
		keys.Tab:          vkTab,
		keys.Enter:        vkReturn,
		keys.Shift:        vkShift,
		keys.Ctrl:         vkControl,
		keys.Alt:          vkMenu,
		keys.Esc:          vkEscape,
		keys.Space:        vkSpace,
		keys.LeftWindows:  vkLWin,
		keys.RightWindows: vkRWin,
		keys.LeftShift:    vkLShift,
		keys.RightShift:   vkRShift,
		keys.LeftCtrl:     vkLControl,
		keys.RightCtrl:    vkRControl,
		keys.LeftAlt:      vkLMenu,
		keys.RightAlt:     vkRMenu,
	}
	keyByVK = map[uint32]keys.Key{}
)

// extendedVK need KEYEVENTF_EXTENDEDKEY when synthesized.
var extendedVK = map[uint32]bool{
	vkRControl: true,
	vkRMenu:    true,
	vkLWin:     true,
	vkRWin:     true,
}

func init() {
	for i := 0; i < 12; i++ {
		vkByKey[keys.Key(fmt.Sprintf("f%d", i+1))] = uint32(vkF1 + i)
	}
	for c := 'a'; c <= 'z'; c++ {
		vkByKey[keys.Key(string(c))] = uint32('A' + (c - 'a'))
	}
	for c := '0'; c <= '9'; c++ {
		vkByKey[keys.Key(string(c))] = uint32(c)
	}
	for k, vk := range vkByKey {
		// Generic modifiers never arrive from the low-level hook, which
		// reports the sided codes.
		if vk == vkShift || vk == vkControl || vk == vkMenu {
			continue
		}
		keyByVK[vk] = k
	}
}
