package physics

import "errors"

var (
	// ErrInvalidEntityConfig rejects non-positive radius/mass, restitution outside [0,1] or non-finite state
	ErrInvalidEntityConfig = errors.New("invalid entity config")

	// ErrInvalidBoundaryConfig rejects degenerate or non-finite segments
	ErrInvalidBoundaryConfig = errors.New("invalid boundary config")
)
