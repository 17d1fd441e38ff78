package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricMapReturnsStablePointer(t *testing.T) {
	m := NewMetricMap[Gauge]()
	a := m.Get("x")
	a.Set(2.5)
	assert.Same(t, a, m.Get("x"))
	assert.Equal(t, 2.5, m.Get("x").Load())

	_, ok := m.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestMetricMapRangeSorted(t *testing.T) {
	m := NewMetricMap[Gauge]()
	for _, k := range []string{"c", "a", "b"} {
		m.Get(k)
	}
	var keys []string
	m.Range(func(k string, _ *Gauge) { keys = append(keys, k) })
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestRegistryConcurrentCounters(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.Counter(EventsDropped)
			for j := 0; j < 1000; j++ {
				c.Add(1)
			}
			r.Gauge(WorldSimTime).Add(0.5)
		}()
	}
	wg.Wait()

	s := r.Snapshot()
	assert.Equal(t, uint64(8000), s.Counters[EventsDropped])
	assert.Equal(t, 4.0, s.Gauges[WorldSimTime])
	assert.Equal(t, 2, r.Len())
}

func TestNilRegistryIsDetached(t *testing.T) {
	var r *Registry
	c := r.Counter(RunnerTicks)
	require.NotNil(t, c)
	c.Add(3)
	assert.NotSame(t, c, r.Counter(RunnerTicks))
	r.Flag(AudioMuted).Store(true)
	r.Gauge(WorldEntities).Set(1)

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Snapshot().Counters)
	assert.Empty(t, r.Summary())
}

func TestRegistrySummary(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "ev-0 snd 0/-0", r.Summary())
	assert.Equal(t, 0, r.Len(), "summary must not register keys")

	r.Counter(EventsDropped).Add(4)
	r.Counter(AudioPlayed).Add(12)
	r.Counter(AudioDropped).Add(1)
	assert.Equal(t, "ev-4 snd 12/-1", r.Summary())
}
