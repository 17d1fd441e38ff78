package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// scaleProjector maps one world unit to 10 screen units
type scaleProjector struct{}

func (scaleProjector) ScreenToWorld(x, y float64) vmath.Vec2 { return vmath.V2(x/10, y/10) }
func (scaleProjector) WorldToScreen(p vmath.Vec2) (float64, float64) {
	return p.X * 10, p.Y * 10
}

func newPortWorld(t *testing.T) (*engine.World, physics.BoundaryID) {
	t.Helper()
	w, err := engine.NewWorld(engine.DefaultConfig())
	require.NoError(t, err)
	id, err := w.AddBoundary(vmath.V2(0, 0), vmath.V2(10, 0))
	require.NoError(t, err)
	return w, id
}

func boundaryAt(t *testing.T, w *engine.World, id physics.BoundaryID) engine.BoundaryState {
	t.Helper()
	s, err := w.Snapshot()
	require.NoError(t, err)
	b, ok := s.Boundary(id)
	require.True(t, ok)
	return b
}

func TestPortDragMovesEndpoint(t *testing.T) {
	w, id := newPortWorld(t)
	p := NewPort(w, scaleProjector{}, nil)

	// P2 sits at screen (100, 0); 8 units away is inside the default grab radius
	started, err := p.PointerDown(100, 8)
	require.NoError(t, err)
	require.True(t, started)
	gotID, which, dragging := p.Dragging()
	assert.True(t, dragging)
	assert.Equal(t, id, gotID)
	assert.Equal(t, physics.EndpointP2, which)
	assert.True(t, boundaryAt(t, w, id).Hovered)

	require.NoError(t, p.PointerMove(150, 50))
	assert.Equal(t, vmath.V2(15, 5), boundaryAt(t, w, id).P2)

	require.NoError(t, p.PointerUp(200, 0))
	assert.Equal(t, vmath.V2(20, 0), boundaryAt(t, w, id).P2)
	assert.Equal(t, PortIdle, p.State())

	// Moves after release do not drag
	require.NoError(t, p.PointerMove(300, 300))
	assert.Equal(t, vmath.V2(20, 0), boundaryAt(t, w, id).P2)
}

func TestPortPointerDownOutsideTolerance(t *testing.T) {
	w, id := newPortWorld(t)
	p := NewPort(w, scaleProjector{}, nil)

	started, err := p.PointerDown(50, 0)
	require.NoError(t, err)
	assert.False(t, started, "segment interior is not an endpoint")

	started, err = p.PointerDown(100, 30)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, vmath.V2(0, 0), boundaryAt(t, w, id).P1)
}

func TestPortDegenerateDragHoldsPosition(t *testing.T) {
	w, id := newPortWorld(t)
	p := NewPort(w, nil, nil)

	started, err := p.PointerDown(10, 0)
	require.NoError(t, err)
	require.True(t, started)

	require.NoError(t, p.PointerMove(5, 5))
	require.NoError(t, p.PointerMove(0, 0), "collapsing move is swallowed")
	assert.Equal(t, vmath.V2(5, 5), boundaryAt(t, w, id).P2)

	_, _, dragging := p.Dragging()
	assert.True(t, dragging)
}

func TestPortDragOfRemovedBoundaryIsIgnored(t *testing.T) {
	w, id := newPortWorld(t)
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewPort(w, nil, zap.New(core))

	started, err := p.PointerDown(0, 0)
	require.NoError(t, err)
	require.True(t, started)

	require.NoError(t, w.RemoveBoundary(id))
	require.NoError(t, p.PointerMove(3, 3))

	_, _, dragging := p.Dragging()
	assert.False(t, dragging)
	assert.Equal(t, 1, logs.FilterMessage("drag target gone, ignoring").Len())
	require.NoError(t, p.PointerUp(4, 4))
}

func TestPortHover(t *testing.T) {
	w, id := newPortWorld(t)
	other, err := w.AddBoundary(vmath.V2(0, 5), vmath.V2(10, 5))
	require.NoError(t, err)
	p := NewPort(w, scaleProjector{}, nil)

	require.NoError(t, p.PointerMove(50, 4))
	got, ok := p.Hovered()
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.True(t, boundaryAt(t, w, id).Hovered)

	require.NoError(t, p.PointerMove(50, 47))
	got, _ = p.Hovered()
	assert.Equal(t, other, got)
	assert.False(t, boundaryAt(t, w, id).Hovered)
	assert.True(t, boundaryAt(t, w, other).Hovered)

	require.NoError(t, p.PointerMove(50, 25))
	_, ok = p.Hovered()
	assert.False(t, ok)
	assert.False(t, boundaryAt(t, w, other).Hovered)
}

func TestPortReleaseClearsDragAndHover(t *testing.T) {
	w, id := newPortWorld(t)
	p := NewPort(w, scaleProjector{}, nil)

	started, err := p.PointerDown(100, 2)
	require.NoError(t, err)
	require.True(t, started)
	require.True(t, boundaryAt(t, w, id).Hovered)

	require.NoError(t, p.Release())
	assert.Equal(t, PortIdle, p.State())
	_, hovering := p.Hovered()
	assert.False(t, hovering)
	assert.False(t, boundaryAt(t, w, id).Hovered)

	// Nothing left to release
	require.NoError(t, p.Release())
}

func TestPortSetParam(t *testing.T) {
	w, _ := newPortWorld(t)
	p := NewPort(w, nil, nil)

	require.NoError(t, p.SetParam(ParamGravity, 9.8))
	require.NoError(t, p.SetParam(ParamTimeScale, 0.5))
	require.NoError(t, p.SetParam(ParamPaused, 1))

	params := w.Params()
	assert.Equal(t, 9.8, params.Gravity)
	assert.Equal(t, 0.5, params.TimeScale)
	assert.True(t, params.Paused)

	assert.ErrorIs(t, p.SetParam(ParamFriction, 3), engine.ErrInvalidParams)
	assert.ErrorIs(t, p.SetParam(ParamKey(42), 1), engine.ErrInvalidParams)
}

func TestParseParamKey(t *testing.T) {
	for _, k := range []ParamKey{ParamGravity, ParamFriction, ParamTimeScale, ParamPaused} {
		got, err := ParseParamKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseParamKey(" Gravity ")
	require.NoError(t, err)
	assert.Equal(t, ParamGravity, got)

	_, err = ParseParamKey("warp")
	assert.ErrorIs(t, err, engine.ErrInvalidParams)
}
