package status

import (
	"fmt"
	"sync/atomic"
)

// Metric keys shared by the hosts
const (
	RunnerTicks    = "runner.ticks"
	RunnerSteps    = "runner.steps"
	WorldEntities  = "world.entities"
	WorldSimTime   = "world.sim_time"
	EventsDropped  = "events.dropped"
	AudioPlayed    = "audio.played"
	AudioDropped   = "audio.dropped"
	AudioMuted     = "audio.muted"
	NetworkClients = "network.clients"
	NetworkDropped = "network.dropped_frames"
)

// Registry groups process metrics by kind
// Components resolve their pointers once and then write without locking
//
// A nil *Registry is valid: accessors return detached metrics, so
// uninstrumented components count into storage nobody reads
type Registry struct {
	Counters *MetricMap[atomic.Uint64]
	Gauges   *MetricMap[Gauge]
	Flags    *MetricMap[atomic.Bool]
}

func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Uint64](),
		Gauges:   NewMetricMap[Gauge](),
		Flags:    NewMetricMap[atomic.Bool](),
	}
}

func (r *Registry) Counter(key string) *atomic.Uint64 {
	if r == nil {
		return new(atomic.Uint64)
	}
	return r.Counters.Get(key)
}

func (r *Registry) Gauge(key string) *Gauge {
	if r == nil {
		return new(Gauge)
	}
	return r.Gauges.Get(key)
}

func (r *Registry) Flag(key string) *atomic.Bool {
	if r == nil {
		return new(atomic.Bool)
	}
	return r.Flags.Get(key)
}

// Len returns the number of registered metrics across all kinds
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.Counters.Len() + r.Gauges.Len() + r.Flags.Len()
}

// Snapshot is a point-in-time copy suitable for encoding
type Snapshot struct {
	Counters map[string]uint64  `json:"counters"`
	Gauges   map[string]float64 `json:"gauges"`
	Flags    map[string]bool    `json:"flags"`
}

func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Counters: make(map[string]uint64),
		Gauges:   make(map[string]float64),
		Flags:    make(map[string]bool),
	}
	if r == nil {
		return s
	}
	r.Counters.Range(func(k string, c *atomic.Uint64) { s.Counters[k] = c.Load() })
	r.Gauges.Range(func(k string, g *Gauge) { s.Gauges[k] = g.Load() })
	r.Flags.Range(func(k string, f *atomic.Bool) { s.Flags[k] = f.Load() })
	return s
}

// Summary renders the drop counters compactly for a status line
// Reads existing metrics only, so drawing never registers keys
func (r *Registry) Summary() string {
	if r == nil {
		return ""
	}
	load := func(key string) uint64 {
		if c, ok := r.Counters.Lookup(key); ok {
			return c.Load()
		}
		return 0
	}
	return fmt.Sprintf("ev-%d snd %d/-%d", load(EventsDropped), load(AudioPlayed), load(AudioDropped))
}
