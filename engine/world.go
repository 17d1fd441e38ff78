package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// World owns all bodies and boundaries and advances them on a fixed timestep
// Not safe for concurrent use: one goroutine (the host loop or a Runner) drives it
type World struct {
	cfg    Config
	params Params
	state  State
	logger *zap.Logger

	accumulator float64
	tick        uint64
	simTime     float64

	// Ordered storage keeps resolver iteration deterministic
	bodies        []*physics.Body
	bodyIndex     map[physics.EntityID]int
	boundaries    []*physics.Boundary
	boundaryIndex map[physics.BoundaryID]int
	nextEntity    physics.EntityID
	nextBoundary  physics.BoundaryID

	resolver     *physics.Resolver
	dispatcher   *event.Dispatcher
	queue        *event.Queue
	lastContacts []physics.Contact

	// Mutations requested while stepping are applied after the current fixed update
	stepping        bool
	pendingRemove   []physics.EntityID
	pendingSpawn    []*physics.Body
	disposeDeferred bool
	resumeDeferred  bool // Accumulator reset waits for the step loop to finish
}

// Option customizes a World at construction
type Option func(*World)

// WithLogger routes lifecycle logging to l
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithEventQueue mirrors every emitted event into q
func WithEventQueue(q *event.Queue) Option {
	return func(w *World) {
		w.queue = q
	}
}

// NewWorld validates cfg and returns an Uninitialized world
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg: cfg,
		params: Params{
			Gravity:        cfg.Gravity,
			GlobalFriction: cfg.GlobalFriction,
			TimeScale:      cfg.TimeScale,
		},
		state:         StateUninitialized,
		logger:        zap.NewNop(),
		bodyIndex:     make(map[physics.EntityID]int),
		boundaryIndex: make(map[physics.BoundaryID]int),
		resolver:      physics.NewResolver(cfg.resolverConfig()),
		dispatcher:    event.NewDispatcher(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Config returns the construction config
func (w *World) Config() Config {
	return w.cfg
}

func (w *World) State() State {
	return w.state
}

// Tick returns the number of fixed updates run so far
func (w *World) Tick() uint64 {
	return w.tick
}

// SimTime returns simulated seconds elapsed
func (w *World) SimTime() float64 {
	return w.simTime
}

// EntityCount returns the live body count, pending spawns excluded
func (w *World) EntityCount() int {
	return len(w.bodies)
}

// --- Lifecycle ---

// Start moves Uninitialized to Running; no-op otherwise
func (w *World) Start() error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}
	if w.state == StateUninitialized {
		w.transition(StateRunning)
	}
	return nil
}

// Pause stops accumulation; Step returns 0 until Resume
func (w *World) Pause() error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}
	if w.state != StatePaused {
		w.transition(StatePaused)
	}
	return nil
}

// Resume continues from a pause without replaying paused time
func (w *World) Resume() error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}
	if w.state != StateRunning {
		if w.stepping {
			w.resumeDeferred = true
		} else {
			w.accumulator = 0
		}
		w.transition(StateRunning)
	}
	return nil
}

// Dispose releases all state; every later call fails with ErrWorldDisposed
// Disposing from inside a handler takes effect when the current step returns
func (w *World) Dispose() error {
	if w.state == StateDisposed || w.disposeDeferred {
		return ErrWorldDisposed
	}
	if w.stepping {
		w.disposeDeferred = true
		return nil
	}
	w.dispose()
	return nil
}

func (w *World) dispose() {
	w.transition(StateDisposed)
	w.disposeDeferred = false
	w.bodies = nil
	w.boundaries = nil
	w.bodyIndex = nil
	w.boundaryIndex = nil
	w.pendingRemove = nil
	w.pendingSpawn = nil
	w.lastContacts = nil
	w.dispatcher.Clear()
	w.queue = nil
}

func (w *World) transition(to State) {
	from := w.state
	if !from.CanTransition(to) {
		w.logger.Warn("illegal world transition",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		return
	}
	w.state = to
	w.logger.Debug("world state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Uint64("tick", w.tick),
	)
	w.emit(event.Event{Type: event.EventStateChanged, Tick: w.tick, State: to.String()})
}

// --- Stepping ---

// Step feeds realDelta seconds of wall time into the accumulator and runs
// as many fixed updates as it covers, returning how many ran
func (w *World) Step(realDelta float64) (int, error) {
	if w.state == StateDisposed {
		return 0, ErrWorldDisposed
	}
	if w.stepping {
		return 0, ErrStepInProgress
	}
	if w.state == StateUninitialized {
		w.transition(StateRunning)
	}
	if w.state == StatePaused {
		return 0, nil
	}

	if !vmath.IsFinite(realDelta) || realDelta < 0 {
		realDelta = 0
	}
	realDelta = math.Min(realDelta, w.cfg.MaxRealDeltaTime)
	w.accumulator += realDelta * w.params.TimeScale

	fixed := w.cfg.FixedDeltaTime
	steps := 0
	for w.accumulator+parameter.AccumulatorTolerance >= fixed {
		w.fixedUpdate(fixed)
		w.accumulator -= fixed
		steps++

		// A handler paused or disposed the world
		if w.state != StateRunning || w.disposeDeferred {
			break
		}
	}
	if w.accumulator < 0 || w.resumeDeferred {
		w.accumulator = 0
		w.resumeDeferred = false
	}

	if w.disposeDeferred {
		w.dispose()
	}
	return steps, nil
}

// fixedUpdate runs one deterministic tick of length dt
func (w *World) fixedUpdate(dt float64) {
	w.stepping = true

	for _, b := range w.bodies {
		b.Integrate(dt, w.params.Gravity, w.params.GlobalFriction)
	}
	for _, wall := range w.boundaries {
		wall.DecayFeedback(dt)
	}

	contacts := w.resolver.Resolve(w.bodies, w.boundaries)
	w.tick++
	w.simTime += dt
	w.lastContacts = append(w.lastContacts[:0], contacts...)

	// Handlers run after the pass so they observe resolved state
	for _, c := range w.lastContacts {
		w.emit(event.Event{Type: event.EventCollision, Tick: w.tick, Contact: c})
		if w.disposeDeferred {
			break
		}
	}

	w.stepping = false
	if !w.disposeDeferred {
		w.applyDeferred()
	}
}

func (w *World) applyDeferred() {
	removals := w.pendingRemove
	w.pendingRemove = nil
	for _, id := range removals {
		if _, ok := w.bodyIndex[id]; ok {
			w.removeBody(id)
		}
	}

	spawns := w.pendingSpawn
	w.pendingSpawn = nil
	for _, b := range spawns {
		w.insertBody(b)
	}
}

func (w *World) emit(ev event.Event) {
	w.dispatcher.Dispatch(ev)
	if w.queue != nil {
		w.queue.Push(ev)
	}
}

// --- Entities ---

// SpawnEntity validates cfg and adds a body; during a step it joins after the current update
func (w *World) SpawnEntity(cfg physics.BodyConfig) (physics.EntityID, error) {
	if w.state == StateDisposed {
		return 0, ErrWorldDisposed
	}
	id := w.nextEntity + 1
	b, err := physics.NewBody(id, cfg)
	if err != nil {
		return 0, err
	}
	w.nextEntity = id

	if w.stepping {
		w.pendingSpawn = append(w.pendingSpawn, b)
		return id, nil
	}
	w.insertBody(b)
	return id, nil
}

// RemoveEntity drops a body; during a step removal is deferred to the end of the update
func (w *World) RemoveEntity(id physics.EntityID) error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}

	for i, b := range w.pendingSpawn {
		if b.ID == id {
			w.pendingSpawn = append(w.pendingSpawn[:i], w.pendingSpawn[i+1:]...)
			return nil
		}
	}
	if _, ok := w.bodyIndex[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}

	if w.stepping {
		for _, pending := range w.pendingRemove {
			if pending == id {
				return nil
			}
		}
		w.pendingRemove = append(w.pendingRemove, id)
		return nil
	}
	w.removeBody(id)
	return nil
}

// ApplyImpulse adds j/m to the body's velocity between steps
func (w *World) ApplyImpulse(id physics.EntityID, j vmath.Vec2) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	if !j.IsFinite() {
		return fmt.Errorf("%w: non-finite impulse %v", ErrInvalidParams, j)
	}
	b.ApplyImpulse(j)
	return nil
}

// Entity returns a copy of one body's state
func (w *World) Entity(id physics.EntityID) (EntityState, error) {
	if w.state == StateDisposed {
		return EntityState{}, ErrWorldDisposed
	}
	i, ok := w.bodyIndex[id]
	if !ok {
		return EntityState{}, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	return entityState(w.bodies[i]), nil
}

func (w *World) body(id physics.EntityID) (*physics.Body, error) {
	if w.state == StateDisposed {
		return nil, ErrWorldDisposed
	}
	if w.stepping {
		return nil, ErrStepInProgress
	}
	i, ok := w.bodyIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	return w.bodies[i], nil
}

func (w *World) insertBody(b *physics.Body) {
	w.bodyIndex[b.ID] = len(w.bodies)
	w.bodies = append(w.bodies, b)
	w.emit(event.Event{Type: event.EventEntitySpawned, Tick: w.tick, Entity: b.ID})
}

// removeBody preserves insertion order of the remaining bodies
func (w *World) removeBody(id physics.EntityID) {
	i := w.bodyIndex[id]
	copy(w.bodies[i:], w.bodies[i+1:])
	w.bodies[len(w.bodies)-1] = nil
	w.bodies = w.bodies[:len(w.bodies)-1]
	delete(w.bodyIndex, id)
	for j := i; j < len(w.bodies); j++ {
		w.bodyIndex[w.bodies[j].ID] = j
	}
	w.emit(event.Event{Type: event.EventEntityRemoved, Tick: w.tick, Entity: id})
}

// --- Boundaries ---

// AddBoundary inserts an immovable segment between steps
func (w *World) AddBoundary(p1, p2 vmath.Vec2) (physics.BoundaryID, error) {
	if w.state == StateDisposed {
		return 0, ErrWorldDisposed
	}
	if w.stepping {
		return 0, ErrStepInProgress
	}
	id := w.nextBoundary + 1
	b, err := physics.NewBoundary(id, p1, p2)
	if err != nil {
		return 0, err
	}
	w.nextBoundary = id
	w.boundaryIndex[id] = len(w.boundaries)
	w.boundaries = append(w.boundaries, b)
	return id, nil
}

func (w *World) RemoveBoundary(id physics.BoundaryID) error {
	if _, err := w.boundary(id); err != nil {
		return err
	}
	i := w.boundaryIndex[id]
	copy(w.boundaries[i:], w.boundaries[i+1:])
	w.boundaries[len(w.boundaries)-1] = nil
	w.boundaries = w.boundaries[:len(w.boundaries)-1]
	delete(w.boundaryIndex, id)
	for j := i; j < len(w.boundaries); j++ {
		w.boundaryIndex[w.boundaries[j].ID] = j
	}
	return nil
}

// MoveBoundaryEndpoint relocates one endpoint; degenerate results are rejected unchanged
func (w *World) MoveBoundaryEndpoint(id physics.BoundaryID, which physics.Endpoint, pos vmath.Vec2) error {
	b, err := w.boundary(id)
	if err != nil {
		return err
	}
	return b.MoveEndpoint(which, pos)
}

// SetBoundaryHover toggles interaction highlight, never read by the resolver
func (w *World) SetBoundaryHover(id physics.BoundaryID, hovered bool) error {
	b, err := w.boundary(id)
	if err != nil {
		return err
	}
	b.Hovered = hovered
	return nil
}

func (w *World) boundary(id physics.BoundaryID) (*physics.Boundary, error) {
	if w.state == StateDisposed {
		return nil, ErrWorldDisposed
	}
	if w.stepping {
		return nil, ErrStepInProgress
	}
	i, ok := w.boundaryIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBoundary, id)
	}
	return w.boundaries[i], nil
}

// --- Parameters ---

// Params returns the live parameters; zero value after Dispose
func (w *World) Params() Params {
	if w.state == StateDisposed {
		return Params{}
	}
	p := w.params
	p.Paused = w.state == StatePaused
	return p
}

// SetParams applies a partial update atomically: nothing changes if any field is invalid
func (w *World) SetParams(patch ParamsPatch) error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}
	next, err := patch.apply(w.params)
	if err != nil {
		return err
	}
	w.params = next

	if patch.Paused != nil {
		if *patch.Paused {
			return w.Pause()
		}
		return w.Resume()
	}
	return nil
}

// SetBounds replaces the clamp box between steps
func (w *World) SetBounds(bounds physics.Bounds) error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}
	if w.stepping {
		return ErrStepInProgress
	}
	cfg := w.cfg
	cfg.Bounds = bounds
	if err := cfg.Validate(); err != nil {
		return err
	}
	w.cfg = cfg
	w.resolver.SetConfig(cfg.resolverConfig())
	return nil
}

// --- Observation ---

// OnCollision registers a collision handler, invoked after each resolver pass
func (w *World) OnCollision(fn func(physics.Contact)) (unsubscribe func()) {
	return w.Subscribe(event.EventCollision, func(ev event.Event) {
		fn(ev.Contact)
	})
}

// Subscribe registers a handler for any world event type
func (w *World) Subscribe(et event.EventType, fn event.Handler) (unsubscribe func()) {
	if w.state == StateDisposed {
		return func() {}
	}
	return w.dispatcher.Subscribe(et, fn)
}

// SetEventQueue mirrors emitted events into q for consumers on other goroutines
// nil detaches
func (w *World) SetEventQueue(q *event.Queue) error {
	if w.state == StateDisposed {
		return ErrWorldDisposed
	}
	w.queue = q
	return nil
}

// Snapshot returns a deep copy of the world, safe to retain or send elsewhere
func (w *World) Snapshot() (Snapshot, error) {
	if w.state == StateDisposed {
		return Snapshot{}, ErrWorldDisposed
	}

	s := Snapshot{
		Tick:       w.tick,
		Time:       w.simTime,
		State:      w.state,
		Params:     w.Params(),
		Bounds:     w.cfg.Bounds,
		Entities:   make([]EntityState, len(w.bodies)),
		Boundaries: make([]BoundaryState, len(w.boundaries)),
		Contacts:   make([]physics.Contact, len(w.lastContacts)),
	}
	for i, b := range w.bodies {
		s.Entities[i] = entityState(b)
	}
	for i, b := range w.boundaries {
		s.Boundaries[i] = boundaryState(b)
	}
	copy(s.Contacts, w.lastContacts)
	return s, nil
}
