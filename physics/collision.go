package physics

import (
	"fmt"
	"math"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/vmath"
)

// DefaultNormal replaces a degenerate contact normal (center on center, center on wall)
var DefaultNormal = vmath.V2(0, -1)

// ContactKind distinguishes pair contacts from boundary contacts
type ContactKind uint8

const (
	ContactBody ContactKind = iota
	ContactBoundary
)

func (k ContactKind) String() string {
	if k == ContactBoundary {
		return "boundary"
	}
	return "body"
}

func (k ContactKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ContactKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "boundary":
		*k = ContactBoundary
	case "body":
		*k = ContactBody
	default:
		return fmt.Errorf("unknown contact kind %q", text)
	}
	return nil
}

// Contact describes one resolved collision
// Normal points from B (or the boundary) toward A
type Contact struct {
	Kind     ContactKind `json:"kind"`
	A        EntityID    `json:"a"`
	B        EntityID    `json:"b,omitempty"`        // ContactBody only
	Boundary BoundaryID  `json:"boundary,omitempty"` // ContactBoundary only
	Normal   vmath.Vec2  `json:"normal"`
	Point    vmath.Vec2  `json:"point"` // Contact point on the surface of B or on the boundary
	Speed    float64     `json:"speed"` // Approach speed along the normal before resolution, >= 0
	Depth    float64     `json:"depth"` // Overlap removed by the resolver
}

// ResolverConfig tunes contact response
type ResolverConfig struct {
	Bounds            Bounds
	ContactThreshold  float64
	TangentialDamping float64
}

// DefaultResolverConfig returns unbounded defaults
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		ContactThreshold:  parameter.DefaultContactThreshold,
		TangentialDamping: parameter.DefaultTangentialDamping,
	}
}

// Resolver detects and resolves interpenetration in one deterministic pass
// Not safe for concurrent use; owned by a single world
type Resolver struct {
	cfg      ResolverConfig
	contacts []Contact
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		cfg:      cfg,
		contacts: make([]Contact, 0, 64),
	}
}

// Config returns current tuning
func (r *Resolver) Config() ResolverConfig {
	return r.cfg
}

// SetConfig replaces tuning, takes effect on the next Resolve
func (r *Resolver) SetConfig(cfg ResolverConfig) {
	r.cfg = cfg
}

// Resolve runs boundary contacts, then pair contacts, then the bounds clamp
// Iteration follows slice order so identical inputs give identical outputs
// The returned slice is reused by the next call
func (r *Resolver) Resolve(bodies []*Body, boundaries []*Boundary) []Contact {
	r.contacts = r.contacts[:0]

	for _, b := range bodies {
		for _, wall := range boundaries {
			r.resolveBoundary(b, wall)
		}
	}

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			r.resolvePair(bodies[i], bodies[j])
		}
	}

	if r.cfg.Bounds.Enabled() {
		for _, b := range bodies {
			ReflectBounds(b, r.cfg.Bounds)
		}
	}

	return r.contacts
}

// resolveBoundary pushes a body out of a segment and reflects its inbound velocity
func (r *Resolver) resolveBoundary(b *Body, wall *Boundary) {
	cp := wall.ClosestPoint(b.Position)
	delta := b.Position.Sub(cp)
	distSq := delta.MagSq()
	if distSq >= b.Radius*b.Radius {
		return
	}

	dist := math.Sqrt(distSq)
	normal := DefaultNormal
	if dist > vmath.Epsilon {
		normal = delta.Scale(1 / dist)
	}

	depth := b.Radius - dist
	b.Position = b.Position.Add(normal.Scale(depth))

	vn := b.Velocity.Dot(normal)
	speed := 0.0
	if vn < 0 {
		speed = -vn
		// Normal component: -e*vn, tangential component damped
		tangent := b.Velocity.Sub(normal.Scale(vn))
		b.Velocity = normal.Scale(-vn * b.Restitution).Add(tangent.Scale(1 - r.cfg.TangentialDamping))
	}

	wall.TriggerHitFeedback()
	r.contacts = append(r.contacts, Contact{
		Kind:     ContactBoundary,
		A:        b.ID,
		Boundary: wall.ID,
		Normal:   normal,
		Point:    cp,
		Speed:    speed,
		Depth:    depth,
	})
}

// resolvePair separates two overlapping bodies symmetrically and exchanges impulse
func (r *Resolver) resolvePair(a, b *Body) {
	delta := a.Position.Sub(b.Position)
	minDist := a.Radius + b.Radius
	distSq := delta.MagSq()
	if distSq >= minDist*minDist {
		return
	}

	dist := math.Sqrt(distSq)
	normal := DefaultNormal
	if dist > vmath.Epsilon {
		normal = delta.Scale(1 / dist)
	}

	depth := minDist - dist
	half := normal.Scale(depth / 2)
	a.Position = a.Position.Add(half)
	b.Position = b.Position.Sub(half)

	// Already separating: positional correction only
	vn := a.Velocity.Sub(b.Velocity).Dot(normal)
	if vn > 0 {
		return
	}

	e := math.Min(a.Restitution, b.Restitution)
	invSum := a.InvMass + b.InvMass
	if invSum == 0 {
		return
	}
	j := -(1 + e) * vn / invSum

	a.Velocity = a.Velocity.Add(normal.Scale(j * a.InvMass))
	b.Velocity = b.Velocity.Sub(normal.Scale(j * b.InvMass))

	if -vn <= r.cfg.ContactThreshold {
		return
	}
	r.contacts = append(r.contacts, Contact{
		Kind:   ContactBody,
		A:      a.ID,
		B:      b.ID,
		Normal: normal,
		Point:  b.Position.Add(normal.Scale(b.Radius)),
		Speed:  -vn,
		Depth:  depth,
	})
}
