package scene

import (
	"fmt"
	"sort"

	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

var presets = map[string]func() *Scene{
	"wall":    wallPreset,
	"headon":  headOnPreset,
	"bounce":  bouncePreset,
	"box":     boxPreset,
	"scatter": scatterPreset,
}

// Presets returns built-in scene names, sorted
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of a built-in scene
func Preset(name string) (*Scene, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownPreset, name, Presets())
	}
	return build(), nil
}

// Resolve picks a scene file when given, else the named preset
func Resolve(preset, file string) (*Scene, error) {
	if file != "" {
		return Load(file)
	}
	return Preset(preset)
}

func ball(x, y, vx, vy, radius, mass, e float64) physics.BodyConfig {
	return physics.BodyConfig{
		Position:    vmath.V2(x, y),
		Velocity:    vmath.V2(vx, vy),
		Radius:      radius,
		Mass:        mass,
		Restitution: e,
	}
}

func segment(x1, y1, x2, y2 float64) BoundarySpec {
	return BoundarySpec{P1: vmath.V2(x1, y1), P2: vmath.V2(x2, y2)}
}

func float(v float64) *float64 { return &v }

// wallPreset: one body heading into a vertical wall
func wallPreset() *Scene {
	return &Scene{
		Name:       "wall",
		Friction:   float(1),
		Entities:   []physics.BodyConfig{ball(0, 0, 5, 0, 1, 1, 1)},
		Boundaries: []BoundarySpec{segment(10, -5, 10, 5)},
	}
}

// headOnPreset: equal bodies exchanging velocity
func headOnPreset() *Scene {
	return &Scene{
		Name:     "headon",
		Friction: float(1),
		Entities: []physics.BodyConfig{
			ball(-6, 0, 3, 0, 1, 1, 1),
			ball(6, 0, -3, 0, 1, 1, 1),
		},
	}
}

// bouncePreset: a half-elastic ball dropped on a floor
func bouncePreset() *Scene {
	return &Scene{
		Name:       "bounce",
		Gravity:    float(9.8),
		Friction:   float(1),
		Entities:   []physics.BodyConfig{ball(0, -10, 0, 0, 0.5, 1, 0.5)},
		Boundaries: []BoundarySpec{segment(-20, 0, 20, 0)},
	}
}

// boxPreset: mixed bodies inside four walls
func boxPreset() *Scene {
	const w, h = 30.0, 14.0
	s := &Scene{
		Name:    "box",
		Gravity: float(4),
		Boundaries: []BoundarySpec{
			segment(-w, -h, w, -h),
			segment(w, -h, w, h),
			segment(w, h, -w, h),
			segment(-w, h, -w, -h),
			segment(-12, 4, 0, 8), // Ramp
		},
	}
	for i := 0; i < 8; i++ {
		x := -21 + float64(i)*6
		s.Entities = append(s.Entities, ball(x, -6, float64(8-i*2), 0, 1+float64(i%3)*0.5, 1+float64(i%3), 0.8))
	}
	return s
}

// scatterPreset: a noise-driven field inside a box
func scatterPreset() *Scene {
	const w, h = 40.0, 20.0
	return &Scene{
		Name:     "scatter",
		Friction: float(1),
		Boundaries: []BoundarySpec{
			segment(-w, -h, w, -h),
			segment(w, -h, w, h),
			segment(w, h, -w, h),
			segment(-w, h, -w, -h),
		},
		Scatter: &Scatter{
			Count:       48,
			Width:       2*w - 4,
			Height:      2*h - 4,
			RadiusMin:   0.5,
			RadiusMax:   1.2,
			Density:     1,
			Restitution: 0.9,
			Speed:       8,
			NoiseScale:  0.08,
		},
	}
}
