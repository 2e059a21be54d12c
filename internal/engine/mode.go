package engine

import "sync/atomic"

// Mode is the engine's interception state.
type Mode int32

const (
	// Intercepting is the initial mode: single-key hooks and combos are live.
	Intercepting Mode = iota
	// PassThrough ("game mode") leaves the keyboard alone.
	PassThrough
)

func (m Mode) String() string {
	switch m {
	case Intercepting:
		return "Intercepting"
	case PassThrough:
		return "PassThrough"
	default:
		return "Unknown"
	}
}

// ModeState is owned by the ModeController. Everyone else reads it through
// Current and PassThrough, both plain atomic loads.
type ModeState struct {
	mode     atomic.Int32
	stopping atomic.Bool
}

// Current returns the live mode.
func (s *ModeState) Current() Mode { return Mode(s.mode.Load()) }

// PassThrough reports whether custom hooks must stay inert.
func (s *ModeState) PassThrough() bool { return s.Current() == PassThrough }

// Stopping reports whether shutdown has begun.
func (s *ModeState) Stopping() bool { return s.stopping.Load() }

// Inert reports whether handlers must do nothing.
func (s *ModeState) Inert() bool { return s.PassThrough() || s.Stopping() }

func (s *ModeState) set(m Mode) { s.mode.Store(int32(m)) }
