package physics

import (
	"fmt"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/vmath"
)

// BoundaryID identifies a boundary within one world, never reused
type BoundaryID uint64

// Endpoint selects one end of a boundary segment
type Endpoint uint8

const (
	EndpointP1 Endpoint = iota
	EndpointP2
)

func (e Endpoint) String() string {
	switch e {
	case EndpointP1:
		return "p1"
	case EndpointP2:
		return "p2"
	default:
		return fmt.Sprintf("endpoint(%d)", uint8(e))
	}
}

// Boundary is an immovable line segment collision surface
// Hovered and HitFlash are feedback state only, the resolver never reads them
type Boundary struct {
	ID       BoundaryID
	P1, P2   vmath.Vec2
	Hovered  bool
	HitFlash float64 // Seconds of flash remaining
}

// ValidateSegment rejects degenerate or non-finite segments
func ValidateSegment(p1, p2 vmath.Vec2) error {
	if !p1.IsFinite() || !p2.IsFinite() {
		return fmt.Errorf("%w: non-finite endpoint %v-%v", ErrInvalidBoundaryConfig, p1, p2)
	}
	if p1.DistanceSq(p2) < vmath.Epsilon*vmath.Epsilon {
		return fmt.Errorf("%w: degenerate segment at %v", ErrInvalidBoundaryConfig, p1)
	}
	return nil
}

func NewBoundary(id BoundaryID, p1, p2 vmath.Vec2) (*Boundary, error) {
	if err := ValidateSegment(p1, p2); err != nil {
		return nil, err
	}
	return &Boundary{ID: id, P1: p1, P2: p2}, nil
}

// ClosestPoint projects q onto the segment clamped to [0,1]
func (b *Boundary) ClosestPoint(q vmath.Vec2) vmath.Vec2 {
	return vmath.ClosestPointOnSegment(q, b.P1, b.P2)
}

// Endpoint returns the selected end
func (b *Boundary) Endpoint(which Endpoint) vmath.Vec2 {
	if which == EndpointP2 {
		return b.P2
	}
	return b.P1
}

// MoveEndpoint repositions one end, rejecting moves that degenerate the segment
func (b *Boundary) MoveEndpoint(which Endpoint, pos vmath.Vec2) error {
	p1, p2 := b.P1, b.P2
	switch which {
	case EndpointP1:
		p1 = pos
	case EndpointP2:
		p2 = pos
	default:
		return fmt.Errorf("%w: unknown endpoint %s", ErrInvalidBoundaryConfig, which)
	}
	if err := ValidateSegment(p1, p2); err != nil {
		return err
	}
	b.P1, b.P2 = p1, p2
	return nil
}

// TriggerHitFeedback restarts the cosmetic flash timer
func (b *Boundary) TriggerHitFeedback() {
	b.HitFlash = parameter.HitFlashDuration
}

// DecayFeedback counts the flash timer down toward zero
func (b *Boundary) DecayFeedback(dt float64) {
	if b.HitFlash <= 0 {
		return
	}
	b.HitFlash -= dt
	if b.HitFlash < 0 {
		b.HitFlash = 0
	}
}

// Length returns segment length
func (b *Boundary) Length() float64 {
	return b.P1.Distance(b.P2)
}
