package physics

import "github.com/lixenwraith/collide/vmath"

// Bounds is an axis-aligned box centered on the origin
// Zero width or height disables clamping on that axis
type Bounds struct {
	Width  float64 `mapstructure:"width" json:"width"`
	Height float64 `mapstructure:"height" json:"height"`
}

// Enabled reports whether any axis clamps
func (b Bounds) Enabled() bool {
	return b.Width > 0 || b.Height > 0
}

// Min returns the lower-left corner
func (b Bounds) Min() vmath.Vec2 {
	return vmath.V2(-b.Width/2, -b.Height/2)
}

// Max returns the upper-right corner
func (b Bounds) Max() vmath.Vec2 {
	return vmath.V2(b.Width/2, b.Height/2)
}

// ReflectBounds clamps a body inside bounds and reflects the outward velocity
// component scaled by restitution, returns true if any axis was clamped
func ReflectBounds(b *Body, bounds Bounds) bool {
	rx := false
	ry := false
	if bounds.Width > 0 {
		rx = reflectAxis(&b.Position.X, &b.Velocity.X, -bounds.Width/2+b.Radius, bounds.Width/2-b.Radius, b.Restitution)
	}
	if bounds.Height > 0 {
		ry = reflectAxis(&b.Position.Y, &b.Velocity.Y, -bounds.Height/2+b.Radius, bounds.Height/2-b.Radius, b.Restitution)
	}
	return rx || ry
}

// reflectAxis clamps pos to [lo, hi]; bodies wider than the box settle at the center
func reflectAxis(pos, vel *float64, lo, hi, restitution float64) bool {
	if lo > hi {
		mid := (lo + hi) / 2
		if *pos == mid {
			return false
		}
		*pos = mid
		*vel = 0
		return true
	}
	if *pos < lo {
		*pos = lo
		if *vel < 0 {
			*vel = -*vel * restitution
		}
		return true
	}
	if *pos > hi {
		*pos = hi
		if *vel > 0 {
			*vel = -*vel * restitution
		}
		return true
	}
	return false
}
