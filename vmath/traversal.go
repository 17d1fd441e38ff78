package vmath

import (
	"math"
)

// GridTraverser is a zero-allocation iterator for supercover DDA grid traversal
// Cells are unit squares; cell (i, j) covers [i, i+1) x [j, j+1)
type GridTraverser struct {
	currX, currY     int
	targetX, targetY int
	stepX, stepY     int

	tMaxX, tMaxY     float64
	tDeltaX, tDeltaY float64

	started bool
	done    bool
}

// NewGridTraverser creates an iterator over every cell the segment a-b touches
func NewGridTraverser(a, b Vec2) GridTraverser {
	t := GridTraverser{
		currX: int(math.Floor(a.X)), currY: int(math.Floor(a.Y)),
		targetX: int(math.Floor(b.X)), targetY: int(math.Floor(b.Y)),
	}

	t.stepX, t.tMaxX, t.tDeltaX = axisSetup(a.X, b.X-a.X)
	t.stepY, t.tMaxY, t.tDeltaY = axisSetup(a.Y, b.Y-a.Y)

	return t
}

// axisSetup returns step direction, parametric distance to the first cell edge and per-cell increment
func axisSetup(start, d float64) (step int, tMax, tDelta float64) {
	if d == 0 {
		return 0, math.Inf(1), math.Inf(1)
	}
	tDelta = math.Abs(1 / d)
	frac := start - math.Floor(start)
	if d > 0 {
		return 1, (1 - frac) * tDelta, tDelta
	}
	return -1, frac * tDelta, tDelta
}

// Next advances the traverser to the next cell
// Returns true if a valid cell is available via Pos()
func (t *GridTraverser) Next() bool {
	if t.done {
		return false
	}
	if !t.started {
		t.started = true
		return true
	}

	if t.currX == t.targetX && t.currY == t.targetY {
		t.done = true
		return false
	}

	if t.tMaxX < t.tMaxY {
		if t.currX != t.targetX {
			t.currX += t.stepX
			t.tMaxX += t.tDeltaX
		} else {
			t.currY += t.stepY
			t.tMaxY += t.tDeltaY
		}
	} else if t.tMaxX > t.tMaxY {
		if t.currY != t.targetY {
			t.currY += t.stepY
			t.tMaxY += t.tDeltaY
		} else {
			t.currX += t.stepX
			t.tMaxX += t.tDeltaX
		}
	} else {
		// Diagonal step
		if t.currX != t.targetX {
			t.currX += t.stepX
			t.tMaxX += t.tDeltaX
		}
		if t.currY != t.targetY {
			t.currY += t.stepY
			t.tMaxY += t.tDeltaY
		}
	}

	return true
}

// Pos returns the current grid coordinates
func (t *GridTraverser) Pos() (int, int) {
	return t.currX, t.currY
}

// Traverse visits every grid cell intersected by the segment a-b until callback returns false
// Terminates once both indices reach the target cell
func Traverse(a, b Vec2, callback func(x, y int) bool) {
	t := NewGridTraverser(a, b)
	for t.Next() {
		if !callback(t.Pos()) {
			return
		}
	}
}
