//go:build windows

package launcher

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const swShowNormal = 1

// OpenInDefaultApp runs the shell "open" verb on path: folders open in
// Explorer, .lnk and .url files launch their targets.
func OpenInDefaultApp(path string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("failed to convert path to UTF16Ptr: %w", err)
	}
	if err := windows.ShellExecute(0, verb, file, nil, nil, swShowNormal); err != nil {
		return fmt.Errorf("ShellExecuteW %s: %w", path, err)
	}
	return nil
}
