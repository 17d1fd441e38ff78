package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// Viewport is an affine world-to-screen transform
// World and screen both grow +Y downward so no axis flip is needed
// Satisfies input.Projector
type Viewport struct {
	width, height float64    // Screen size in cells or pixels
	scale         float64    // Screen units per world unit, horizontal
	aspect        float64    // Vertical scale relative to horizontal
	center        vmath.Vec2 // World point at screen center

	toScreen mgl64.Mat3
	toWorld  mgl64.Mat3
}

// NewViewport creates a viewport centered on the world origin
// aspect is 1 for square pixels and parameter.TerminalCellAspect for terminal cells
func NewViewport(width, height int, scale, aspect float64) *Viewport {
	if scale <= 0 {
		scale = 1
	}
	if aspect <= 0 {
		aspect = 1
	}
	v := &Viewport{
		width:  float64(width),
		height: float64(height),
		scale:  scale,
		aspect: aspect,
	}
	v.rebuild()
	return v
}

func (v *Viewport) rebuild() {
	v.toScreen = mgl64.Translate2D(v.width/2, v.height/2).
		Mul3(mgl64.Scale2D(v.scale, v.scale*v.aspect)).
		Mul3(mgl64.Translate2D(-v.center.X, -v.center.Y))
	v.toWorld = v.toScreen.Inv()
}

// Resize updates the screen size, keeping scale and center
func (v *Viewport) Resize(width, height int) {
	v.width = float64(width)
	v.height = float64(height)
	v.rebuild()
}

// SetScale sets screen units per world unit; non-positive values are ignored
func (v *Viewport) SetScale(scale float64) {
	if scale <= 0 {
		return
	}
	v.scale = scale
	v.rebuild()
}

// SetCenter moves the world point shown at screen center
func (v *Viewport) SetCenter(c vmath.Vec2) {
	v.center = c
	v.rebuild()
}

// Fit picks the largest scale that shows the whole bounds box with a margin
// Axes without bounds do not constrain the scale; no-op when bounds are disabled
func (v *Viewport) Fit(b physics.Bounds) {
	if !b.Enabled() || v.width <= 0 || v.height <= 0 {
		return
	}
	usable := 1 - 2*parameter.ViewportFitMargin
	scale := math.Inf(1)
	if b.Width > 0 {
		scale = math.Min(scale, v.width*usable/b.Width)
	}
	if b.Height > 0 {
		scale = math.Min(scale, v.height*usable/(b.Height*v.aspect))
	}
	v.center = vmath.Zero2
	v.SetScale(scale)
}

func (v *Viewport) Size() (int, int) {
	return int(v.width), int(v.height)
}

func (v *Viewport) Scale() float64 {
	return v.scale
}

// WorldToScreen maps a world point to fractional screen coordinates
func (v *Viewport) WorldToScreen(p vmath.Vec2) (float64, float64) {
	r := v.toScreen.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return r[0], r[1]
}

// ScreenToWorld maps screen coordinates back to world space
func (v *Viewport) ScreenToWorld(x, y float64) vmath.Vec2 {
	r := v.toWorld.Mul3x1(mgl64.Vec3{x, y, 1})
	return vmath.V2(r[0], r[1])
}

// CellToWorld maps the center of a terminal cell to world space
func (v *Viewport) CellToWorld(col, row int) vmath.Vec2 {
	return v.ScreenToWorld(float64(col)+0.5, float64(row)+0.5)
}
