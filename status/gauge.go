package status

import (
	"math"
	"sync/atomic"
)

// Gauge is an atomic float64; the zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

func (g *Gauge) Load() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Add applies delta with a CAS loop and returns the new value
func (g *Gauge) Add(delta float64) float64 {
	for {
		old := g.bits.Load()
		next := math.Float64frombits(old) + delta
		if g.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}
