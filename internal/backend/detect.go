package backend

import (
	"log"
	"os"
	"runtime"
)

// DisplayServer represents the type of display server in use
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
	DisplayServerMacOS
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	case DisplayServerMacOS:
		return "macOS"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer determines which display server is currently in use.
// This function is safe to call on any platform.
func DetectDisplayServer() DisplayServer {
	return detectDisplayServer(runtime.GOOS, os.Getenv)
}

func detectDisplayServer(goos string, getenv func(string) string) DisplayServer {
	switch goos {
	case "windows":
		return DisplayServerWindows
	case "darwin":
		return DisplayServerMacOS
	}

	// An X11 display wins over Wayland: XWayland still delivers global key
	// events to the X hook.
	if getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	if getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}

	log.Println("Warning: Could not detect display server type")
	return DisplayServerUnknown
}
