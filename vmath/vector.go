package vmath

import "math"

// Vec2 is a 2D vector value, never shared by reference
type Vec2 struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// V2 is shorthand for Vec2{x, y}
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Zero2 is the zero vector
var Zero2 = Vec2{}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Div returns v/s, zero vector when s is 0
func (v Vec2) Div(s float64) Vec2 {
	if s == 0 {
		return Vec2{}
	}
	return Vec2{v.X / s, v.Y / s}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// MagSq returns squared length, prefer for comparisons
func (v Vec2) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Mag() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns unit vector, zero vector when magnitude is below Epsilon
func (v Vec2) Normalize() Vec2 {
	mag := v.Mag()
	if mag < Epsilon {
		return Vec2{}
	}
	return Vec2{v.X / mag, v.Y / mag}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Distance(o Vec2) float64 {
	return v.Sub(o).Mag()
}

func (v Vec2) DistanceSq(o Vec2) float64 {
	return v.Sub(o).MagSq()
}

// Lerp interpolates toward o, t is not clamped
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Perp returns vector rotated 90° counter-clockwise
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Reflect mirrors v about a unit normal
// v' = v - 2 * dot(v, n) * n
func (v Vec2) Reflect(n Vec2) Vec2 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// ClampMag limits length to maxMag while preserving direction
func (v Vec2) ClampMag(maxMag float64) Vec2 {
	magSq := v.MagSq()
	if magSq <= maxMag*maxMag || magSq == 0 {
		return v
	}
	return v.Scale(maxMag / math.Sqrt(magSq))
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// IsFinite reports whether both components are neither NaN nor Inf
func (v Vec2) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// ApproxEqual compares component-wise within eps
func (v Vec2) ApproxEqual(o Vec2, eps float64) bool {
	return ApproxEqual(v.X, o.X, eps) && ApproxEqual(v.Y, o.Y, eps)
}
