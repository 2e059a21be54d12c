//go:build !windows

package launcher

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
)

// OpenInDefaultApp opens path with the desktop's handler for it.
func OpenInDefaultApp(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		// Assume Linux/Unix-like
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to start command (%s): %v", cmd.String(), err)
		return fmt.Errorf("failed to start command (%s): %w", cmd.String(), err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
