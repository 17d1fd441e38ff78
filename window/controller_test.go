package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/render"
	"github.com/lixenwraith/collide/vmath"
)

func newController(t *testing.T) (*Controller, *engine.World, *engine.ManualClock) {
	t.Helper()
	w, err := engine.NewWorld(engine.DefaultConfig())
	require.NoError(t, err)
	clock := engine.NewManualClock(time.Unix(0, 0))
	runner := engine.NewRunner(w, clock, 0, nil)
	// 10 px per unit, origin at (100, 100)
	vp := render.NewViewport(200, 200, 10, 1)
	return NewController(w, runner, vp, nil), w, clock
}

func TestControllerQuit(t *testing.T) {
	c, _, _ := newController(t)
	assert.ErrorIs(t, c.Apply(InputState{Quit: true}), ErrQuit)
}

func TestControllerDragInPixels(t *testing.T) {
	c, w, _ := newController(t)
	id, err := w.AddBoundary(vmath.V2(0, 0), vmath.V2(5, 0))
	require.NoError(t, err)

	// P2 at pixel (150, 100)
	require.NoError(t, c.Apply(InputState{X: 151, Y: 102, JustPressed: true}))
	require.NoError(t, c.Apply(InputState{X: 160, Y: 120}))
	require.NoError(t, c.Apply(InputState{X: 170, Y: 130, JustReleased: true}))

	snap, err := w.Snapshot()
	require.NoError(t, err)
	b, ok := snap.Boundary(id)
	require.True(t, ok)
	assert.True(t, b.P2.ApproxEqual(vmath.V2(7, 3), 1e-9), "got %v", b.P2)
}

func TestControllerKeys(t *testing.T) {
	c, w, _ := newController(t)
	require.NoError(t, w.Start())

	require.NoError(t, c.Apply(InputState{TogglePause: true}))
	assert.Equal(t, engine.StatePaused, w.State())
	require.NoError(t, c.Apply(InputState{TogglePause: true}))
	assert.Equal(t, engine.StateRunning, w.State())

	require.NoError(t, c.Apply(InputState{ToggleSlow: true}))
	assert.Equal(t, parameter.WindowSlowMotionScale, w.Params().TimeScale)
	require.NoError(t, c.Apply(InputState{ToggleSlow: true}))
	assert.Equal(t, 1.0, w.Params().TimeScale)

	require.NoError(t, c.Apply(InputState{GravityDelta: 2}))
	require.NoError(t, c.Apply(InputState{GravityDelta: 2}))
	assert.Equal(t, 4.0, w.Params().Gravity)
}

func TestControllerWheelZoom(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.Apply(InputState{Wheel: 1}))
	assert.InDelta(t, 10*parameter.WindowZoomStep, c.viewport.Scale(), 1e-12)
}

func TestControllerUpdateSteps(t *testing.T) {
	c, w, clock := newController(t)
	_, err := w.SpawnEntity(physics.BodyConfig{Velocity: vmath.V2(1, 0), Radius: 0.5, Mass: 1, Restitution: 1})
	require.NoError(t, err)

	require.NoError(t, c.Update(InputState{}))
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, c.Update(InputState{}))
	assert.Greater(t, w.Tick(), uint64(0))

	require.NoError(t, w.Dispose())
	assert.ErrorIs(t, c.Update(InputState{}), engine.ErrWorldDisposed)
}

func TestBuildFrame(t *testing.T) {
	c, _, _ := newController(t)
	snap := &engine.Snapshot{
		Bounds: physics.Bounds{Width: 10, Height: 10},
		Entities: []engine.EntityState{
			{ID: 1, Position: vmath.V2(1, 2), Radius: 0.5, Mass: 1},
		},
		Boundaries: []engine.BoundaryState{
			{ID: 1, P1: vmath.V2(-1, 0), P2: vmath.V2(1, 0), Hovered: true},
		},
	}
	f := c.BuildFrame(snap)

	// Four bounds edges and one boundary
	require.Len(t, f.Lines, 5)
	boundary := f.Lines[4]
	assert.Equal(t, Line{X1: 90, Y1: 100, X2: 110, Y2: 100, Width: parameter.WindowBoundaryWidth, Color: rgba(render.RgbHovered)}, boundary)

	// Two endpoint handles and one body
	require.Len(t, f.Circles, 3)
	body := f.Circles[2]
	assert.Equal(t, float32(110), body.X)
	assert.Equal(t, float32(120), body.Y)
	assert.Equal(t, float32(5), body.R)
	assert.Contains(t, f.HUD, "n=1")
}

func TestRGBA(t *testing.T) {
	got := rgba(render.RgbEndpoint)
	assert.Equal(t, uint8(255), got.R)
	assert.Equal(t, uint8(165), got.G)
	assert.Equal(t, uint8(0), got.B)
	assert.Equal(t, uint8(255), got.A)
}
