package input

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// Target is the world surface the port mutates; *engine.World satisfies it
type Target interface {
	Snapshot() (engine.Snapshot, error)
	MoveBoundaryEndpoint(id physics.BoundaryID, which physics.Endpoint, pos vmath.Vec2) error
	SetBoundaryHover(id physics.BoundaryID, hovered bool) error
	SetParams(patch engine.ParamsPatch) error
}

// Projector maps between host screen coordinates and world coordinates
type Projector interface {
	ScreenToWorld(x, y float64) vmath.Vec2
	WorldToScreen(p vmath.Vec2) (x, y float64)
}

// IdentityProjector treats screen coordinates as world coordinates
type IdentityProjector struct{}

func (IdentityProjector) ScreenToWorld(x, y float64) vmath.Vec2 { return vmath.V2(x, y) }
func (IdentityProjector) WorldToScreen(p vmath.Vec2) (float64, float64) {
	return p.X, p.Y
}

// PortState is the pointer state machine
type PortState uint8

const (
	PortIdle     PortState = iota // No button held
	PortDragging                  // Button held on a boundary endpoint
)

// Port translates pointer and slider input into world mutations
// Call only between steps, on the goroutine that owns the world
type Port struct {
	target    Target
	projector Projector
	logger    *zap.Logger

	grabTolerance  float64 // Screen units
	hoverTolerance float64 // Screen units

	state        PortState
	dragBoundary physics.BoundaryID
	dragEndpoint physics.Endpoint

	hovered    physics.BoundaryID
	hasHovered bool
}

// NewPort binds a port to target; nil projector means identity, nil logger means no-op
func NewPort(target Target, projector Projector, logger *zap.Logger) *Port {
	if projector == nil {
		projector = IdentityProjector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Port{
		target:         target,
		projector:      projector,
		logger:         logger,
		grabTolerance:  parameter.DefaultGrabTolerance,
		hoverTolerance: parameter.DefaultHoverTolerance,
	}
}

// SetTolerance overrides pick radii in screen units; non-positive values are ignored
func (p *Port) SetTolerance(grab, hover float64) {
	if grab > 0 {
		p.grabTolerance = grab
	}
	if hover > 0 {
		p.hoverTolerance = hover
	}
}

// SetProjector swaps the coordinate mapping, e.g. after a host resize
func (p *Port) SetProjector(projector Projector) {
	if projector != nil {
		p.projector = projector
	}
}

func (p *Port) State() PortState {
	return p.state
}

// Dragging returns the endpoint under drag
func (p *Port) Dragging() (physics.BoundaryID, physics.Endpoint, bool) {
	return p.dragBoundary, p.dragEndpoint, p.state == PortDragging
}

// Hovered returns the boundary currently highlighted
func (p *Port) Hovered() (physics.BoundaryID, bool) {
	return p.hovered, p.hasHovered
}

// PointerDown begins a drag when (x, y) lies within grab tolerance of an endpoint
// Reports whether a drag started
func (p *Port) PointerDown(x, y float64) (bool, error) {
	snap, err := p.target.Snapshot()
	if err != nil {
		return false, err
	}

	best := p.grabTolerance
	found := false
	for _, b := range snap.Boundaries {
		for _, which := range [...]physics.Endpoint{physics.EndpointP1, physics.EndpointP2} {
			ex, ey := p.projector.WorldToScreen(endpointOf(b, which))
			d := math.Hypot(ex-x, ey-y)
			// Strict less keeps the first boundary on ties
			if d < best || (!found && d <= best) {
				best = d
				found = true
				p.dragBoundary = b.ID
				p.dragEndpoint = which
			}
		}
	}
	if !found {
		return false, nil
	}

	p.state = PortDragging
	p.logger.Debug("drag started",
		zap.Uint64("boundary", uint64(p.dragBoundary)),
		zap.Stringer("endpoint", p.dragEndpoint),
	)
	return true, p.setHover(p.dragBoundary)
}

// PointerMove drags the held endpoint, or updates hover when no drag is active
func (p *Port) PointerMove(x, y float64) error {
	if p.state == PortDragging {
		return p.moveDragged(x, y)
	}

	snap, err := p.target.Snapshot()
	if err != nil {
		return err
	}

	best := p.hoverTolerance
	var nearest physics.BoundaryID
	found := false
	for _, b := range snap.Boundaries {
		ax, ay := p.projector.WorldToScreen(b.P1)
		bx, by := p.projector.WorldToScreen(b.P2)
		d := vmath.DistanceToSegment(vmath.V2(x, y), vmath.V2(ax, ay), vmath.V2(bx, by))
		if d < best || (!found && d <= best) {
			best = d
			nearest = b.ID
			found = true
		}
	}

	if !found {
		return p.clearHover()
	}
	return p.setHover(nearest)
}

// PointerUp applies the final position and ends the drag
func (p *Port) PointerUp(x, y float64) error {
	if p.state != PortDragging {
		return nil
	}
	err := p.moveDragged(x, y)
	p.endDrag()
	return err
}

// Cancel drops any drag without a final move
func (p *Port) Cancel() {
	p.endDrag()
}

// Release cancels the drag and clears hover, for a pointer that is going away
func (p *Port) Release() error {
	p.endDrag()
	return p.clearHover()
}

func (p *Port) moveDragged(x, y float64) error {
	pos := p.projector.ScreenToWorld(x, y)
	err := p.target.MoveBoundaryEndpoint(p.dragBoundary, p.dragEndpoint, pos)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrUnknownBoundary):
		p.logger.Debug("drag target gone, ignoring",
			zap.Uint64("boundary", uint64(p.dragBoundary)),
		)
		p.endDrag()
		p.hasHovered = false
		return nil
	case errors.Is(err, physics.ErrInvalidBoundaryConfig):
		// Collapsing onto the other endpoint: hold the last valid position
		p.logger.Debug("drag rejected", zap.Error(err))
		return nil
	default:
		return err
	}
}

func (p *Port) endDrag() {
	if p.state == PortDragging {
		p.logger.Debug("drag ended", zap.Uint64("boundary", uint64(p.dragBoundary)))
	}
	p.state = PortIdle
	p.dragBoundary = 0
}

func (p *Port) setHover(id physics.BoundaryID) error {
	if p.hasHovered && p.hovered == id {
		return nil
	}
	if err := p.clearHover(); err != nil {
		return err
	}
	if err := p.target.SetBoundaryHover(id, true); err != nil {
		return ignoreGone(err)
	}
	p.hovered = id
	p.hasHovered = true
	return nil
}

func (p *Port) clearHover() error {
	if !p.hasHovered {
		return nil
	}
	p.hasHovered = false
	return ignoreGone(p.target.SetBoundaryHover(p.hovered, false))
}

func ignoreGone(err error) error {
	if errors.Is(err, engine.ErrUnknownBoundary) {
		return nil
	}
	return err
}

func endpointOf(b engine.BoundaryState, which physics.Endpoint) vmath.Vec2 {
	if which == physics.EndpointP2 {
		return b.P2
	}
	return b.P1
}
