package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/status"
)

// Command mutates the world on the runner goroutine, between steps
type Command func(w *World) error

// SnapshotSink receives a snapshot after every runner tick
type SnapshotSink func(Snapshot)

// Runner owns a World and drives it from a Clock
// Other goroutines interact only through Submit and snapshot sinks
type Runner struct {
	world    *World
	clock    Clock
	interval time.Duration
	logger   *zap.Logger

	commands chan Command

	mu    sync.RWMutex
	sinks []SnapshotSink

	lastTick time.Time
	primed   bool

	latest atomic.Pointer[Snapshot]

	ticks    *atomic.Uint64
	steps    *atomic.Uint64
	entities *status.Gauge
	simTime  *status.Gauge
}

// NewRunner wires a runner; interval <= 0 uses FrameUpdateInterval
func NewRunner(world *World, clock Clock, interval time.Duration, logger *zap.Logger) *Runner {
	if interval <= 0 {
		interval = parameter.FrameUpdateInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		world:    world,
		clock:    clock,
		interval: interval,
		logger:   logger,
		commands: make(chan Command, parameter.CommandQueueSize),
	}
	r.Instrument(nil)
	return r
}

// Instrument publishes runner counters and world gauges through reg
// Call before the first Tick; a nil reg detaches them
func (r *Runner) Instrument(reg *status.Registry) {
	r.ticks = reg.Counter(status.RunnerTicks)
	r.steps = reg.Counter(status.RunnerSteps)
	r.entities = reg.Gauge(status.WorldEntities)
	r.simTime = reg.Gauge(status.WorldSimTime)
}

// Submit queues cmd for the next tick without blocking
func (r *Runner) Submit(cmd Command) error {
	select {
	case r.commands <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// AddSink registers fn to receive every published snapshot
func (r *Runner) AddSink(fn SnapshotSink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, fn)
	r.mu.Unlock()
}

// Latest returns the most recent published snapshot
func (r *Runner) Latest() (Snapshot, bool) {
	s := r.latest.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// Ticks returns runner iterations; Steps returns fixed updates run through this runner
func (r *Runner) Ticks() uint64 { return r.ticks.Load() }
func (r *Runner) Steps() uint64 { return r.steps.Load() }

// Tick drains queued commands, steps by the clock delta since the last tick,
// then publishes a snapshot. The first tick only primes the clock
func (r *Runner) Tick() error {
	r.drainCommands()

	now := r.clock.Now()
	delta := 0.0
	if r.primed {
		delta = now.Sub(r.lastTick).Seconds()
	}
	r.lastTick = now
	r.primed = true

	steps, err := r.world.Step(delta)
	if err != nil {
		return err
	}
	r.ticks.Add(1)
	r.steps.Add(uint64(steps))

	snap, err := r.world.Snapshot()
	if err != nil {
		return err
	}
	r.latest.Store(&snap)
	r.entities.Set(float64(len(snap.Entities)))
	r.simTime.Set(snap.Time)

	r.mu.RLock()
	sinks := r.sinks
	r.mu.RUnlock()
	for _, sink := range sinks {
		sink(snap)
	}
	return nil
}

func (r *Runner) drainCommands() {
	for {
		select {
		case cmd := <-r.commands:
			if err := cmd(r.world); err != nil {
				r.logger.Debug("command rejected", zap.Error(err))
			}
		default:
			return
		}
	}
}

// Run ticks until ctx is cancelled or the world is disposed
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("runner started", zap.Duration("interval", r.interval))
	defer r.logger.Info("runner stopped",
		zap.Uint64("ticks", r.ticks.Load()),
		zap.Uint64("steps", r.steps.Load()),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				if errors.Is(err, ErrWorldDisposed) {
					return nil
				}
				return err
			}
		}
	}
}
