package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// KeyMap maps the keys a toggle hotkey may end in to golang.design/x/hotkey
// keys. Letters, digits, F keys and Enter are taken by the combo layer.
var KeyMap = map[keys.Key]hotkey.Key{
	keys.Esc:   hotkey.KeyEscape,
	keys.Space: hotkey.KeySpace,
	keys.Tab:   hotkey.KeyTab,
}
