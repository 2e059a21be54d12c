package ui

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// ShowError shows a blocking error dialog.
func ShowError(title, message string) {
	if err := zenity.Error(message, zenity.Title(title), zenity.ErrorIcon); err != nil && !errors.Is(err, zenity.ErrCanceled) {
		log.Printf("Warning: error dialog failed: %v", err)
	}
}

// ShowInfo shows a blocking information dialog.
func ShowInfo(title, message string) {
	if err := zenity.Info(message, zenity.Title(title), zenity.InfoIcon); err != nil && !errors.Is(err, zenity.ErrCanceled) {
		log.Printf("Warning: info dialog failed: %v", err)
	}
}

// UsageText explains the key bindings for the help dialog.
func UsageText(basePath, toggleHotkey string) string {
	var quiet, native []string
	for _, t := range keys.TriggerKeys() {
		if t.Common {
			native = append(native, t.Label)
		} else {
			quiet = append(quiet, t.Label)
		}
	}
	example := filepath.Join(basePath, "F1", "a.lnk")
	return fmt.Sprintf("Function keys F1 to F12 are launch triggers.\n\n"+
		"Fx + Enter opens the folder for that key.\n"+
		"Fx + a letter or digit launches the shortcut named after it, for example F1 + A opens %s.\n\n"+
		"Pressed alone, %s do nothing. Hold Ctrl, Alt, Shift or Win to use them as usual. %s keep their normal function.\n\n"+
		"%s toggles Game Mode, which passes every key through.",
		example, strings.Join(quiet, ", "), strings.Join(native, ", "), toggleHotkey)
}
