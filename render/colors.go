package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/collide/vmath"
)

// RGB color definitions
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbBounds     = tcell.NewRGBColor(80, 84, 110)   // Dim slate
	RgbBoundary   = tcell.NewRGBColor(180, 180, 180) // Brighter gray
	RgbHovered    = tcell.NewRGBColor(100, 150, 255) // Normal Blue
	RgbHitFlash   = tcell.NewRGBColor(255, 255, 255) // White
	RgbEndpoint   = tcell.NewRGBColor(255, 165, 0)   // Orange
	RgbStatusBar  = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusBg   = tcell.NewRGBColor(40, 42, 58)
	RgbPaused     = tcell.NewRGBColor(255, 80, 80) // Normal Red
	RgbRunning    = tcell.NewRGBColor(0, 200, 0)   // Normal Green
)

// Body palette; slow bodies are cool, fast bodies warm
var speedRamp = [...][3]uint8{
	{60, 100, 200}, // Dark Blue
	{0, 200, 200},  // Vibrant Cyan
	{0, 200, 0},    // Normal Green
	{255, 255, 0},  // Bright Yellow
	{255, 80, 80},  // Normal Red
}

// SpeedColor interpolates the body palette for speed in [0, maxSpeed]
func SpeedColor(speed, maxSpeed float64) tcell.Color {
	if maxSpeed <= 0 {
		maxSpeed = 1
	}
	t := vmath.Clamp(speed/maxSpeed, 0, 1) * float64(len(speedRamp)-1)
	i := int(t)
	if i >= len(speedRamp)-1 {
		c := speedRamp[len(speedRamp)-1]
		return tcell.NewRGBColor(int32(c[0]), int32(c[1]), int32(c[2]))
	}
	f := t - float64(i)
	a, b := speedRamp[i], speedRamp[i+1]
	return tcell.NewRGBColor(
		int32(vmath.Lerp(float64(a[0]), float64(b[0]), f)),
		int32(vmath.Lerp(float64(a[1]), float64(b[1]), f)),
		int32(vmath.Lerp(float64(a[2]), float64(b[2]), f)),
	)
}

// BlendColor mixes a toward b by t in [0, 1]
func BlendColor(a, b tcell.Color, t float64) tcell.Color {
	t = vmath.Clamp(t, 0, 1)
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	return tcell.NewRGBColor(
		int32(vmath.Lerp(float64(ar), float64(br), t)),
		int32(vmath.Lerp(float64(ag), float64(bg), t)),
		int32(vmath.Lerp(float64(ab), float64(bb), t)),
	)
}
