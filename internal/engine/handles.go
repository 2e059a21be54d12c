package engine

import (
	"errors"
	"fmt"

	"github.com/TanaroSch/powerkey/internal/hook"
)

// handleSet owns a group of registrations so they can be released together,
// including when building the group fails halfway.
type handleSet struct {
	names   []string
	handles []hook.Handle
}

func (s *handleSet) add(name string, h hook.Handle) {
	s.names = append(s.names, name)
	s.handles = append(s.handles, h)
}

func (s *handleSet) len() int { return len(s.handles) }

// releaseAll releases in reverse registration order and empties the set.
// Every handle is attempted even when some fail.
func (s *handleSet) releaseAll() error {
	var errs []error
	for i := len(s.handles) - 1; i >= 0; i-- {
		if err := s.handles[i].Release(); err != nil {
			errs = append(errs, fmt.Errorf("release '%s': %w", s.names[i], err))
		}
	}
	s.names = nil
	s.handles = nil
	return errors.Join(errs...)
}
