package window

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/input"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/render"
)

// ErrQuit is returned by Apply when the user asks to close the window
var ErrQuit = errors.New("quit requested")

// InputState is one frame of polled input
type InputState struct {
	X, Y         float64 // Cursor in pixels
	JustPressed  bool
	JustReleased bool
	Wheel        float64 // Positive zooms in

	TogglePause  bool
	ToggleSlow   bool
	GravityDelta float64
	Quit         bool
}

// Controller holds the window host state that does not depend on a live display
// Owns the world through the runner; call from the ebiten update goroutine only
type Controller struct {
	world    *engine.World
	runner   *engine.Runner
	port     *input.Port
	viewport *render.Viewport
	logger   *zap.Logger

	slow bool
}

func NewController(world *engine.World, runner *engine.Runner, viewport *render.Viewport, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		world:    world,
		runner:   runner,
		port:     input.NewPort(world, viewport, logger),
		viewport: viewport,
		logger:   logger,
	}
}

func (c *Controller) Port() *input.Port {
	return c.port
}

// Apply routes one frame of input to the port and viewport
func (c *Controller) Apply(in InputState) error {
	if in.Quit {
		return ErrQuit
	}

	var err error
	switch {
	case in.JustPressed:
		_, err = c.port.PointerDown(in.X, in.Y)
	case in.JustReleased:
		err = c.port.PointerUp(in.X, in.Y)
	default:
		err = c.port.PointerMove(in.X, in.Y)
	}
	if err != nil {
		return c.filter(err)
	}

	if in.Wheel != 0 {
		c.viewport.SetScale(c.viewport.Scale() * math.Pow(parameter.WindowZoomStep, in.Wheel))
	}

	if in.TogglePause {
		paused := 1.0
		if c.world.State() == engine.StatePaused {
			paused = 0
		}
		if err := c.port.SetParam(input.ParamPaused, paused); err != nil {
			return c.filter(err)
		}
	}

	if in.ToggleSlow {
		c.slow = !c.slow
		scale := 1.0
		if c.slow {
			scale = parameter.WindowSlowMotionScale
		}
		if err := c.port.SetParam(input.ParamTimeScale, scale); err != nil {
			return c.filter(err)
		}
	}

	if in.GravityDelta != 0 {
		g := c.world.Params().Gravity + in.GravityDelta
		if err := c.port.SetParam(input.ParamGravity, g); err != nil {
			return c.filter(err)
		}
	}
	return nil
}

// filter keeps fatal errors and logs the rest
func (c *Controller) filter(err error) error {
	if errors.Is(err, engine.ErrWorldDisposed) {
		return err
	}
	c.logger.Debug("input rejected", zap.Error(err))
	return nil
}

// Update applies input then advances the world one runner tick
func (c *Controller) Update(in InputState) error {
	if err := c.Apply(in); err != nil {
		return err
	}
	return c.runner.Tick()
}

// Circle is a filled disc in pixels
type Circle struct {
	X, Y, R float32
	Color   color.RGBA
}

// Line is a stroked segment in pixels
type Line struct {
	X1, Y1, X2, Y2 float32
	Width          float32
	Color          color.RGBA
}

// Frame is the display list of one snapshot
type Frame struct {
	Lines   []Line
	Circles []Circle
	HUD     string
}

// BuildFrame converts a snapshot into pixel-space shapes
func (c *Controller) BuildFrame(snap *engine.Snapshot) Frame {
	var f Frame

	if snap.Bounds.Enabled() {
		f.Lines = append(f.Lines, c.boundsLines(snap)...)
	}

	for _, b := range snap.Boundaries {
		col := render.RgbBoundary
		if b.Hovered {
			col = render.RgbHovered
		}
		if b.HitFlash > 0 {
			col = render.BlendColor(col, render.RgbHitFlash, b.HitFlash/parameter.HitFlashDuration)
		}
		x1, y1 := c.viewport.WorldToScreen(b.P1)
		x2, y2 := c.viewport.WorldToScreen(b.P2)
		f.Lines = append(f.Lines, Line{
			X1: float32(x1), Y1: float32(y1), X2: float32(x2), Y2: float32(y2),
			Width: parameter.WindowBoundaryWidth,
			Color: rgba(col),
		})
		f.Circles = append(f.Circles,
			Circle{X: float32(x1), Y: float32(y1), R: parameter.WindowEndpointRadius, Color: rgba(render.RgbEndpoint)},
			Circle{X: float32(x2), Y: float32(y2), R: parameter.WindowEndpointRadius, Color: rgba(render.RgbEndpoint)},
		)
	}

	scale := c.viewport.Scale()
	for _, e := range snap.Entities {
		x, y := c.viewport.WorldToScreen(e.Position)
		f.Circles = append(f.Circles, Circle{
			X:     float32(x),
			Y:     float32(y),
			R:     float32(e.Radius * scale),
			Color: rgba(render.SpeedColor(e.Velocity.Mag(), 20)),
		})
	}

	f.HUD = fmt.Sprintf("%s  tick %d  t=%.2fs  n=%d\ng=%.2f [up/down]  x%.2f [s]  space: pause  wheel: zoom",
		snap.State, snap.Tick, snap.Time, len(snap.Entities),
		snap.Params.Gravity, snap.Params.TimeScale)
	return f
}

func (c *Controller) boundsLines(snap *engine.Snapshot) []Line {
	b := snap.Bounds
	w, h := c.viewport.Size()
	x0, y0 := c.viewport.WorldToScreen(b.Min())
	x1, y1 := c.viewport.WorldToScreen(b.Max())
	if b.Width <= 0 {
		x0, x1 = 0, float64(w)
	}
	if b.Height <= 0 {
		y0, y1 = 0, float64(h)
	}

	col := rgba(render.RgbBounds)
	var lines []Line
	if b.Height > 0 {
		lines = append(lines,
			Line{X1: float32(x0), Y1: float32(y0), X2: float32(x1), Y2: float32(y0), Width: 1, Color: col},
			Line{X1: float32(x0), Y1: float32(y1), X2: float32(x1), Y2: float32(y1), Width: 1, Color: col},
		)
	}
	if b.Width > 0 {
		lines = append(lines,
			Line{X1: float32(x0), Y1: float32(y0), X2: float32(x0), Y2: float32(y1), Width: 1, Color: col},
			Line{X1: float32(x1), Y1: float32(y0), X2: float32(x1), Y2: float32(y1), Width: 1, Color: col},
		)
	}
	return lines
}

// rgba converts a palette color to an opaque image color
func rgba(c tcell.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}
