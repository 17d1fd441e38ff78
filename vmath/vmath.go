package vmath

import "math"

// Epsilon is the magnitude below which a vector counts as degenerate
const Epsilon = 1e-9

// --- Scalars ---

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func ApproxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// --- Randomness ---

// FastRand is a xorshift64 generator, deterministic for a given seed
// Not safe for concurrent use
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Range returns a value in [lo, hi)
func (r *FastRand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}
