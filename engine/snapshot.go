package engine

import (
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// EntityState is the read-only view of one body
type EntityState struct {
	ID          physics.EntityID `json:"id"`
	Position    vmath.Vec2       `json:"position"`
	Velocity    vmath.Vec2       `json:"velocity"`
	Radius      float64          `json:"radius"`
	Mass        float64          `json:"mass"`
	Restitution float64          `json:"restitution"`
}

// BoundaryState is the read-only view of one boundary
type BoundaryState struct {
	ID       physics.BoundaryID `json:"id"`
	P1       vmath.Vec2         `json:"p1"`
	P2       vmath.Vec2         `json:"p2"`
	Hovered  bool               `json:"hovered"`
	HitFlash float64            `json:"hit_flash"`
}

// Snapshot is a deep copy of world state, safe to hand to other goroutines
type Snapshot struct {
	Tick       uint64            `json:"tick"`
	Time       float64           `json:"time"`
	State      State             `json:"state"`
	Params     Params            `json:"params"`
	Bounds     physics.Bounds    `json:"bounds"`
	Entities   []EntityState     `json:"entities"`
	Boundaries []BoundaryState   `json:"boundaries"`
	Contacts   []physics.Contact `json:"contacts"` // Contacts of the last fixed update
}

// Entity finds an entity by id
func (s *Snapshot) Entity(id physics.EntityID) (EntityState, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return EntityState{}, false
}

// Boundary finds a boundary by id
func (s *Snapshot) Boundary(id physics.BoundaryID) (BoundaryState, bool) {
	for _, b := range s.Boundaries {
		if b.ID == id {
			return b, true
		}
	}
	return BoundaryState{}, false
}

// TotalMomentum sums m*v over all entities
func (s *Snapshot) TotalMomentum() vmath.Vec2 {
	var p vmath.Vec2
	for _, e := range s.Entities {
		p = p.Add(e.Velocity.Scale(e.Mass))
	}
	return p
}

// KineticEnergy sums 0.5*m*|v|^2 over all entities
func (s *Snapshot) KineticEnergy() float64 {
	var ke float64
	for _, e := range s.Entities {
		ke += 0.5 * e.Mass * e.Velocity.MagSq()
	}
	return ke
}

func entityState(b *physics.Body) EntityState {
	return EntityState{
		ID:          b.ID,
		Position:    b.Position,
		Velocity:    b.Velocity,
		Radius:      b.Radius,
		Mass:        b.Mass,
		Restitution: b.Restitution,
	}
}

func boundaryState(b *physics.Boundary) BoundaryState {
	return BoundaryState{
		ID:       b.ID,
		P1:       b.P1,
		P2:       b.P2,
		Hovered:  b.Hovered,
		HitFlash: b.HitFlash,
	}
}
