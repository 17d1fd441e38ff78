package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/collide/input"
)

var _ input.Projector = (*Viewport)(nil)

// PointerTracker turns tcell mouse events into port pointer calls
// tcell reports button state rather than press/release edges, so edges are derived here
type PointerTracker struct {
	pressed bool
}

// Handle forwards one mouse event; coordinates are cell centers in screen space
func (pt *PointerTracker) Handle(ev *tcell.EventMouse, port *input.Port) error {
	col, row := ev.Position()
	x, y := float64(col)+0.5, float64(row)+0.5
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !pt.pressed:
		pt.pressed = true
		_, err := port.PointerDown(x, y)
		return err
	case !down && pt.pressed:
		pt.pressed = false
		return port.PointerUp(x, y)
	default:
		return port.PointerMove(x, y)
	}
}

// Pressed reports whether the primary button is held
func (pt *PointerTracker) Pressed() bool {
	return pt.pressed
}
