// Package backend provides the OS keyboard hooks behind hook.Backend.
package backend

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/TanaroSch/powerkey/internal/hook"
)

// ErrBackendNotAvailable is returned when a backend cannot be used on the current system.
var ErrBackendNotAvailable = errors.New("backend not available on this system")

// Names accepted by Select.
const (
	Auto    = "auto"
	Windows = "windows"
	Gohook  = "gohook"
)

// factories is filled per platform by init functions in the build-tagged files.
var (
	factories      = map[string]func() hook.Backend{}
	defaultBackend string
)

// Select returns the named backend, or the platform default for "auto" and "".
// The backend is not started.
func Select(name string) (hook.Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == Auto {
		name = defaultBackend
	}
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrBackendNotAvailable, name, strings.Join(Available(), ", "))
	}
	b := factory()
	if !b.IsAvailable() {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, b.Name())
	}
	log.Printf("Selected keyboard backend: %s", b.Name())
	return b, nil
}

// Available lists the backend names compiled into this binary.
func Available() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
