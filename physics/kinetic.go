package physics

import (
	"fmt"

	"github.com/lixenwraith/collide/vmath"
)

// EntityID identifies a body within one world, never reused
type EntityID uint64

// BodyConfig is the validated input for spawning a body
type BodyConfig struct {
	Position    vmath.Vec2 `mapstructure:"position" json:"position"`
	Velocity    vmath.Vec2 `mapstructure:"velocity" json:"velocity"`
	Radius      float64    `mapstructure:"radius" json:"radius"`
	Mass        float64    `mapstructure:"mass" json:"mass"`
	Restitution float64    `mapstructure:"restitution" json:"restitution"`
}

// Validate fails fast on values the resolver cannot handle
func (c BodyConfig) Validate() error {
	switch {
	case !vmath.IsFinite(c.Radius) || c.Radius <= 0:
		return fmt.Errorf("%w: radius %v must be positive", ErrInvalidEntityConfig, c.Radius)
	case !vmath.IsFinite(c.Mass) || c.Mass <= 0:
		return fmt.Errorf("%w: mass %v must be positive", ErrInvalidEntityConfig, c.Mass)
	case !vmath.IsFinite(c.Restitution) || c.Restitution < 0 || c.Restitution > 1:
		return fmt.Errorf("%w: restitution %v outside [0,1]", ErrInvalidEntityConfig, c.Restitution)
	case !c.Position.IsFinite():
		return fmt.Errorf("%w: non-finite position %v", ErrInvalidEntityConfig, c.Position)
	case !c.Velocity.IsFinite():
		return fmt.Errorf("%w: non-finite velocity %v", ErrInvalidEntityConfig, c.Velocity)
	}
	return nil
}

// Body is a dynamic circular entity
type Body struct {
	ID          EntityID
	Position    vmath.Vec2
	Velocity    vmath.Vec2
	Radius      float64
	Mass        float64
	InvMass     float64
	Restitution float64
}

// NewBody validates cfg and returns a body with precomputed inverse mass
func NewBody(id EntityID, cfg BodyConfig) (*Body, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Body{
		ID:          id,
		Position:    cfg.Position,
		Velocity:    cfg.Velocity,
		Radius:      cfg.Radius,
		Mass:        cfg.Mass,
		InvMass:     1 / cfg.Mass,
		Restitution: cfg.Restitution,
	}, nil
}

// Integrate performs semi-implicit Euler: v += g*dt (Y axis); v *= friction; p += v*dt
// friction in (0,1] so speed never grows from damping
func (b *Body) Integrate(dt, gravity, friction float64) {
	b.Velocity.Y += gravity * dt
	b.Velocity = b.Velocity.Scale(friction)
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// ApplyImpulse adds a momentum change, scaled by inverse mass
func (b *Body) ApplyImpulse(j vmath.Vec2) {
	b.Velocity = b.Velocity.Add(j.Scale(b.InvMass))
}

// SetVelocity overrides velocity (hard redirect)
func (b *Body) SetVelocity(v vmath.Vec2) {
	b.Velocity = v
}

// Momentum returns m*v
func (b *Body) Momentum() vmath.Vec2 {
	return b.Velocity.Scale(b.Mass)
}

// KineticEnergy returns ½mv²
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.MagSq()
}
