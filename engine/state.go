package engine

import "fmt"

// State is the world lifecycle phase
// Uninitialized -> Running <-> Paused -> Disposed
type State uint8

const (
	StateUninitialized State = iota
	StateRunning
	StatePaused
	StateDisposed
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateRunning:       "running",
	StatePaused:        "paused",
	StateDisposed:      "disposed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// CanTransition reports whether the lifecycle allows s -> to
func (s State) CanTransition(to State) bool {
	switch s {
	case StateUninitialized:
		return to == StateRunning || to == StatePaused || to == StateDisposed
	case StateRunning:
		return to == StatePaused || to == StateDisposed
	case StatePaused:
		return to == StateRunning || to == StateDisposed
	default:
		return false
	}
}
