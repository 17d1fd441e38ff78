package scene

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// Perlin parameters for the velocity field
const (
	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3
)

// Scatter fills a centered rectangle with non-overlapping bodies
// Directions follow a Perlin field so neighbours drift coherently
type Scatter struct {
	Count       int     `mapstructure:"count"`
	Width       float64 `mapstructure:"width"`
	Height      float64 `mapstructure:"height"`
	RadiusMin   float64 `mapstructure:"radius_min"`
	RadiusMax   float64 `mapstructure:"radius_max"`
	Density     float64 `mapstructure:"density"` // Mass per unit area
	Restitution float64 `mapstructure:"restitution"`
	Speed       float64 `mapstructure:"speed"`
	NoiseScale  float64 `mapstructure:"noise_scale"`
}

func (s *Scatter) Validate() error {
	switch {
	case s.Count < 0:
		return fmt.Errorf("count %d is negative", s.Count)
	case s.RadiusMin <= 0 || s.RadiusMax < s.RadiusMin:
		return fmt.Errorf("radius range [%v, %v] is invalid", s.RadiusMin, s.RadiusMax)
	case s.Density <= 0:
		return fmt.Errorf("density %v must be positive", s.Density)
	case s.Restitution < 0 || s.Restitution > 1:
		return fmt.Errorf("restitution %v outside [0,1]", s.Restitution)
	case s.Speed < 0:
		return fmt.Errorf("speed %v is negative", s.Speed)
	}
	if capacity := s.capacity(); s.Count > capacity {
		return fmt.Errorf("count %d exceeds %d slots in %vx%v", s.Count, capacity, s.Width, s.Height)
	}
	return nil
}

func (s *Scatter) cell() float64 {
	return 2*s.RadiusMax + s.RadiusMin
}

func (s *Scatter) grid() (cols, rows int) {
	c := s.cell()
	return int(s.Width / c), int(s.Height / c)
}

func (s *Scatter) capacity() int {
	cols, rows := s.grid()
	return cols * rows
}

// Generate returns Count body configs, identical for identical seeds
func (s *Scatter) Generate(seed int64) []physics.BodyConfig {
	cols, rows := s.grid()
	slots := cols * rows
	n := s.Count
	if n > slots {
		n = slots
	}
	if n <= 0 {
		return nil
	}

	rng := vmath.NewFastRand(uint64(seed))
	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed)

	// Fisher-Yates over grid slots
	order := make([]int, slots)
	for i := range order {
		order[i] = i
	}
	for i := slots - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	cell := s.cell()
	origin := vmath.V2(-float64(cols)*cell/2, -float64(rows)*cell/2)
	scale := s.NoiseScale
	if scale <= 0 {
		scale = 0.1
	}

	bodies := make([]physics.BodyConfig, 0, n)
	for _, slot := range order[:n] {
		col, row := slot%cols, slot/cols
		radius := rng.Range(s.RadiusMin, s.RadiusMax)
		// Jitter stays within the slack between radius and half cell
		slack := cell/2 - radius
		center := origin.Add(vmath.V2((float64(col)+0.5)*cell, (float64(row)+0.5)*cell))
		pos := center.Add(vmath.V2(rng.Range(-slack, slack), rng.Range(-slack, slack)))

		angle := noise.Noise2D(pos.X*scale, pos.Y*scale) * 2 * math.Pi
		magnitude := s.Speed * (0.5 + 0.5*rng.Float64())
		vel := vmath.V2(math.Cos(angle), math.Sin(angle)).Scale(magnitude)

		bodies = append(bodies, physics.BodyConfig{
			Position:    pos,
			Velocity:    vel,
			Radius:      radius,
			Mass:        s.Density * math.Pi * radius * radius,
			Restitution: s.Restitution,
		})
	}
	return bodies
}
