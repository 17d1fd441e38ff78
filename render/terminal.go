package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/vmath"
)

// Terminal draws world snapshots onto a tcell screen
// Not safe for concurrent use; call from the host loop
type Terminal struct {
	screen   tcell.Screen
	viewport *Viewport

	width, height int // Full screen size
	showHUD       bool
	maxSpeed      float64 // Speed mapped to the hottest body color
	status        string  // Extra status text appended by the host

	bgStyle tcell.Style
}

// NewTerminal binds a renderer to an initialized screen
func NewTerminal(screen tcell.Screen, cellsPerUnit float64, showHUD bool) *Terminal {
	t := &Terminal{
		screen:   screen,
		showHUD:  showHUD,
		maxSpeed: 20,
		bgStyle:  tcell.StyleDefault.Background(RgbBackground),
	}
	t.width, t.height = screen.Size()
	t.viewport = NewViewport(t.width, t.fieldHeight(), cellsPerUnit, parameter.TerminalCellAspect)
	return t
}

func (t *Terminal) fieldHeight() int {
	if !t.showHUD {
		return t.height
	}
	return max(0, t.height-parameter.BottomMargin)
}

// Viewport exposes the transform for pointer input
func (t *Terminal) Viewport() *Viewport {
	return t.viewport
}

// Resize picks up the current screen size
func (t *Terminal) Resize() {
	t.width, t.height = t.screen.Size()
	t.viewport.Resize(t.width, t.fieldHeight())
}

// SetStatus sets host text shown at the right of the status line
func (t *Terminal) SetStatus(s string) {
	t.status = s
}

// SetMaxSpeed sets the speed drawn with the hottest color
func (t *Terminal) SetMaxSpeed(speed float64) {
	if speed > 0 {
		t.maxSpeed = speed
	}
}

// Draw renders one snapshot and shows the screen
func (t *Terminal) Draw(snap *engine.Snapshot, dragging bool) {
	t.screen.Fill(' ', t.bgStyle)

	t.drawBounds(snap)
	t.drawBoundaries(snap)
	t.drawEntities(snap)
	if t.showHUD {
		t.drawStatus(snap, dragging)
	}

	t.screen.Show()
}

// setCell writes inside the field area only
func (t *Terminal) setCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= t.width || y >= t.fieldHeight() {
		return
	}
	t.screen.SetContent(x, y, r, nil, style)
}

func (t *Terminal) cellOf(p vmath.Vec2) (int, int) {
	x, y := t.viewport.WorldToScreen(p)
	return int(math.Floor(x)), int(math.Floor(y))
}

func (t *Terminal) drawBounds(snap *engine.Snapshot) {
	b := snap.Bounds
	if !b.Enabled() {
		return
	}
	style := t.bgStyle.Foreground(RgbBounds)
	x0, y0 := t.cellOf(b.Min())
	x1, y1 := t.cellOf(b.Max())
	if b.Width <= 0 {
		x0, x1 = 0, t.width-1
	}
	if b.Height <= 0 {
		y0, y1 = 0, t.fieldHeight()-1
	}
	if b.Height > 0 {
		for x := x0; x <= x1; x++ {
			t.setCell(x, y0, parameter.GlyphBoundsH, style)
			t.setCell(x, y1, parameter.GlyphBoundsH, style)
		}
	}
	if b.Width > 0 {
		for y := y0; y <= y1; y++ {
			t.setCell(x0, y, parameter.GlyphBoundsV, style)
			t.setCell(x1, y, parameter.GlyphBoundsV, style)
		}
	}
}

func (t *Terminal) drawBoundaries(snap *engine.Snapshot) {
	for _, b := range snap.Boundaries {
		color := RgbBoundary
		if b.Hovered {
			color = RgbHovered
		}
		if b.HitFlash > 0 {
			color = BlendColor(color, RgbHitFlash, b.HitFlash/parameter.HitFlashDuration)
		}
		style := t.bgStyle.Foreground(color)

		ax, ay := t.viewport.WorldToScreen(b.P1)
		bx, by := t.viewport.WorldToScreen(b.P2)
		vmath.Traverse(vmath.V2(ax, ay), vmath.V2(bx, by), func(x, y int) bool {
			t.setCell(x, y, parameter.GlyphBoundary, style)
			return true
		})

		endStyle := t.bgStyle.Foreground(RgbEndpoint)
		x, y := t.cellOf(b.P1)
		t.setCell(x, y, parameter.GlyphEndpoint, endStyle)
		x, y = t.cellOf(b.P2)
		t.setCell(x, y, parameter.GlyphEndpoint, endStyle)
	}
}

func (t *Terminal) drawEntities(snap *engine.Snapshot) {
	scale := t.viewport.Scale()
	for _, e := range snap.Entities {
		style := t.bgStyle.Foreground(SpeedColor(e.Velocity.Mag(), t.maxSpeed))
		sx, sy := t.viewport.WorldToScreen(e.Position)
		rx := e.Radius * scale
		ry := rx * parameter.TerminalCellAspect

		if rx > 1 && ry > 0.5 {
			for row := int(math.Floor(sy - ry)); row <= int(math.Floor(sy+ry)); row++ {
				for col := int(math.Floor(sx - rx)); col <= int(math.Floor(sx+rx)); col++ {
					dx := (float64(col) + 0.5 - sx) / rx
					dy := (float64(row) + 0.5 - sy) / ry
					if dx*dx+dy*dy <= 1 {
						t.setCell(col, row, parameter.GlyphBodyFill, style)
					}
				}
			}
		}
		t.setCell(int(math.Floor(sx)), int(math.Floor(sy)), parameter.GlyphBodySmall, style)
	}
}

func (t *Terminal) drawStatus(snap *engine.Snapshot, dragging bool) {
	row := t.height - 1
	if row < 0 {
		return
	}
	base := tcell.StyleDefault.Foreground(RgbStatusBar).Background(RgbStatusBg)
	for x := 0; x < t.width; x++ {
		t.screen.SetContent(x, row, ' ', nil, base)
	}

	mode, modeColor := parameter.StatusTextRunning, RgbRunning
	switch {
	case dragging:
		mode, modeColor = parameter.StatusTextDragged, RgbEndpoint
	case snap.State != engine.StateRunning:
		mode, modeColor = parameter.StatusTextPaused, RgbPaused
	}
	x := t.drawText(0, row, mode, base.Foreground(RgbBackground).Background(modeColor))

	info := fmt.Sprintf(" tick %d  t=%.2fs  n=%d  g=%.2f  f=%.3f  x%.2f ",
		snap.Tick, snap.Time, len(snap.Entities),
		snap.Params.Gravity, snap.Params.GlobalFriction, snap.Params.TimeScale)
	t.drawText(x, row, info, base)

	if t.status != "" {
		t.drawText(t.width-len([]rune(t.status)), row, t.status, base)
	}
}

// drawText writes a single-width string and returns the column after it
func (t *Terminal) drawText(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= 0 && x < t.width {
			t.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
	return x
}
