package viewer

import "errors"

// State is the lifecycle state of a Controller.
type State int

const (
	StateUninitialized State = iota
	StateClosed
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var (
	// ErrNotInitialized is returned by every operation on a Controller that
	// was never initialized.
	ErrNotInitialized = errors.New("viewer not initialized")

	// ErrNoSourceBound is returned by Rerender when no list file is bound.
	ErrNoSourceBound = errors.New("no source file bound to viewer")

	// ErrInvalidTransition is returned when an operation is not allowed in
	// the controller's current state.
	ErrInvalidTransition = errors.New("invalid viewer state transition")
)
