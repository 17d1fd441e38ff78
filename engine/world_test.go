package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

const frame = 1.0 / 60.0

// frictionless returns a config where motion is easy to predict by hand
func frictionless() Config {
	cfg := DefaultConfig()
	cfg.GlobalFriction = 1
	cfg.MaxRealDeltaTime = 1
	return cfg
}

func newTestWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	return w
}

func spawn(t *testing.T, w *World, pos, vel vmath.Vec2, radius, mass, e float64) physics.EntityID {
	t.Helper()
	id, err := w.SpawnEntity(physics.BodyConfig{
		Position:    pos,
		Velocity:    vel,
		Radius:      radius,
		Mass:        mass,
		Restitution: e,
	})
	require.NoError(t, err)
	return id
}

func stepN(t *testing.T, w *World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := w.Step(frame); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNewWorldRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fixed dt", func(c *Config) { c.FixedDeltaTime = 0 }},
		{"negative max delta", func(c *Config) { c.MaxRealDeltaTime = -1 }},
		{"friction above one", func(c *Config) { c.GlobalFriction = 1.5 }},
		{"zero friction", func(c *Config) { c.GlobalFriction = 0 }},
		{"negative time scale", func(c *Config) { c.TimeScale = -1 }},
		{"time scale above max", func(c *Config) { c.TimeScale = parameter.MaxTimeScale * 2 }},
		{"negative bounds", func(c *Config) { c.Bounds.Width = -10 }},
		{"damping of one", func(c *Config) { c.TangentialDamping = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewWorld(cfg)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestScenarioWallBounce(t *testing.T) {
	w := newTestWorld(t, frictionless())
	id := spawn(t, w, vmath.V2(0, 0), vmath.V2(5, 0), 1, 1, 1)
	wall, err := w.AddBoundary(vmath.V2(10, -5), vmath.V2(10, 5))
	require.NoError(t, err)

	var hits []physics.Contact
	w.OnCollision(func(c physics.Contact) { hits = append(hits, c) })

	maxX := 0.0
	for i := 0; i < 180; i++ {
		stepN(t, w, 1)
		e, err := w.Entity(id)
		require.NoError(t, err)
		if e.Position.X > maxX {
			maxX = e.Position.X
		}
	}

	e, _ := w.Entity(id)
	if !vmath.ApproxEqual(e.Velocity.X, -5, 1e-9) {
		t.Errorf("expected velocity.x to flip to -5, got %v", e.Velocity.X)
	}
	if maxX > 9+1e-9 {
		t.Errorf("entity surface crossed the wall: max x %v", maxX)
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly one boundary contact, got %d", len(hits))
	}
	if hits[0].Kind != physics.ContactBoundary || hits[0].Boundary != wall || hits[0].A != id {
		t.Errorf("unexpected contact %+v", hits[0])
	}
}

func TestScenarioHeadOnExchange(t *testing.T) {
	w := newTestWorld(t, frictionless())
	a := spawn(t, w, vmath.V2(-2, 0), vmath.V2(3, 0), 1, 1, 1)
	b := spawn(t, w, vmath.V2(2, 0), vmath.V2(-3, 0), 1, 1, 1)

	contacts := 0
	w.OnCollision(func(c physics.Contact) {
		contacts++
		assert.Equal(t, physics.ContactBody, c.Kind)
		assert.InDelta(t, 6, c.Speed, 1e-9)
	})

	stepN(t, w, 60)

	ea, _ := w.Entity(a)
	eb, _ := w.Entity(b)
	assert.Equal(t, 1, contacts)
	assert.InDelta(t, -3, ea.Velocity.X, 1e-9)
	assert.InDelta(t, 3, eb.Velocity.X, 1e-9)
	assert.InDelta(t, 0, ea.Velocity.Y, 1e-12)
	assert.InDelta(t, 0, eb.Velocity.Y, 1e-12)
}

func TestScenarioDecayingBounceHeights(t *testing.T) {
	cfg := frictionless()
	cfg.Gravity = 9.8
	w := newTestWorld(t, cfg)

	const radius = 0.5
	id := spawn(t, w, vmath.V2(0, -10), vmath.Zero2, radius, 1, 0.5)
	_, err := w.AddBoundary(vmath.V2(-50, 0), vmath.V2(50, 0))
	require.NoError(t, err)

	// +Y points down; an apex is where upward motion (vy < 0) stops
	var apexes []float64
	prevVY := 0.0
	for i := 0; i < 600 && len(apexes) < 3; i++ {
		stepN(t, w, 1)
		e, _ := w.Entity(id)
		if prevVY < 0 && e.Velocity.Y >= 0 {
			apexes = append(apexes, -e.Position.Y-radius)
		}
		prevVY = e.Velocity.Y
		if e.Position.Y > -radius+1e-9 {
			t.Fatalf("entity sank into the floor at step %d: y=%v", i, e.Position.Y)
		}
	}

	require.Len(t, apexes, 3, "expected three rebounds")
	for i := 1; i < len(apexes); i++ {
		if apexes[i] >= apexes[i-1] {
			t.Errorf("bounce heights must strictly decrease: %v", apexes)
		}
	}
	if apexes[0] >= 9.5 {
		t.Errorf("first rebound %v should be below drop height", apexes[0])
	}
}

func TestScenarioRemoveFromCollisionHandler(t *testing.T) {
	w := newTestWorld(t, frictionless())
	a := spawn(t, w, vmath.V2(-0.9, 0), vmath.V2(3, 0), 1, 1, 1)
	b := spawn(t, w, vmath.V2(0.9, 0), vmath.V2(-3, 0), 1, 1, 1)
	c := spawn(t, w, vmath.V2(0, 0.9), vmath.V2(0, -3), 1, 1, 1)

	var order []string
	requested := make(map[physics.EntityID]bool)
	w.Subscribe(event.EventEntityRemoved, func(ev event.Event) {
		order = append(order, "removed")
	})
	w.OnCollision(func(contact physics.Contact) {
		order = append(order, "collision")
		// Remove every participant, including one removed twice
		require.NoError(t, w.RemoveEntity(contact.A))
		requested[contact.A] = true
		if contact.Kind == physics.ContactBody {
			require.NoError(t, w.RemoveEntity(contact.B))
			requested[contact.B] = true
		}
		// Still present until the fixed update completes
		assert.Equal(t, 3, w.EntityCount())
		_, err := w.Entity(a)
		assert.NoError(t, err)
	})

	steps, err := w.Step(frame)
	require.NoError(t, err)
	require.Equal(t, 1, steps)

	require.NotEmpty(t, order)
	assert.Equal(t, "collision", order[0])
	lastCollision := 0
	for i, o := range order {
		if o == "collision" {
			lastCollision = i
		}
	}
	for _, o := range order[lastCollision+1:] {
		assert.Equal(t, "removed", o)
	}
	// a and b collide head-on first
	require.True(t, requested[a])
	require.True(t, requested[b])
	assert.Equal(t, 3-len(requested), w.EntityCount())
	for _, id := range []physics.EntityID{a, b, c} {
		_, err := w.Entity(id)
		if requested[id] {
			assert.ErrorIs(t, err, ErrUnknownEntity)
		} else {
			assert.NoError(t, err)
		}
	}

	// World keeps stepping with an empty collection
	_, err = w.Step(frame)
	assert.NoError(t, err)
}

func TestSpawnDuringStepJoinsAfterUpdate(t *testing.T) {
	w := newTestWorld(t, frictionless())
	spawn(t, w, vmath.V2(-0.9, 0), vmath.V2(3, 0), 1, 1, 1)
	spawn(t, w, vmath.V2(0.9, 0), vmath.V2(-3, 0), 1, 1, 1)

	var spawned physics.EntityID
	unsubscribe := w.OnCollision(func(physics.Contact) {
		id, err := w.SpawnEntity(physics.BodyConfig{Position: vmath.V2(0, 20), Radius: 1, Mass: 1})
		require.NoError(t, err)
		spawned = id
		assert.Equal(t, 2, w.EntityCount())
	})

	stepN(t, w, 1)
	unsubscribe()

	require.NotZero(t, spawned)
	assert.Equal(t, 3, w.EntityCount())
	e, err := w.Entity(spawned)
	require.NoError(t, err)
	// Joined after integration so it has not moved yet
	assert.Equal(t, vmath.V2(0, 20), e.Position)
}

func TestMutationsRejectedDuringStep(t *testing.T) {
	w := newTestWorld(t, frictionless())
	a := spawn(t, w, vmath.V2(-0.9, 0), vmath.V2(3, 0), 1, 1, 1)
	spawn(t, w, vmath.V2(0.9, 0), vmath.V2(-3, 0), 1, 1, 1)
	wall, err := w.AddBoundary(vmath.V2(0, 10), vmath.V2(5, 10))
	require.NoError(t, err)

	var errs []error
	w.OnCollision(func(physics.Contact) {
		errs = append(errs,
			w.MoveBoundaryEndpoint(wall, physics.EndpointP1, vmath.V2(1, 1)),
			w.ApplyImpulse(a, vmath.V2(1, 0)),
			w.RemoveBoundary(wall),
		)
		_, err := w.AddBoundary(vmath.V2(0, 0), vmath.V2(1, 0))
		errs = append(errs, err)
		_, err = w.Step(frame)
		errs = append(errs, err)
	})

	stepN(t, w, 1)
	require.Len(t, errs, 5)
	for i, err := range errs {
		if !errors.Is(err, ErrStepInProgress) {
			t.Errorf("call %d: expected ErrStepInProgress, got %v", i, err)
		}
	}
}

// chunkingWorld builds the same small scene for each chunking strategy
func chunkingWorld(t *testing.T) *World {
	t.Helper()
	cfg := frictionless()
	cfg.Gravity = 9.8
	cfg.GlobalFriction = 0.99
	cfg.Bounds = physics.Bounds{Width: 40, Height: 40}
	w := newTestWorld(t, cfg)
	spawn(t, w, vmath.V2(-3, 0), vmath.V2(40, 1), 1, 1, 0.9)
	spawn(t, w, vmath.V2(3, 0.5), vmath.V2(-40, 0), 1.5, 2, 0.7)
	spawn(t, w, vmath.V2(0, -8), vmath.V2(2, 30), 0.5, 0.5, 1)
	_, err := w.AddBoundary(vmath.V2(-10, 5), vmath.V2(10, 6))
	require.NoError(t, err)
	return w
}

func TestDeterminismUnderChunking(t *testing.T) {
	single := chunkingWorld(t)
	steps, err := single.Step(10 * frame)
	require.NoError(t, err)
	require.Equal(t, 10, steps)

	perFrame := chunkingWorld(t)
	total := 0
	for i := 0; i < 10; i++ {
		n, err := perFrame.Step(frame)
		require.NoError(t, err)
		total += n
	}
	require.Equal(t, 10, total)

	halfFrame := chunkingWorld(t)
	total = 0
	for i := 0; i < 20; i++ {
		n, err := halfFrame.Step(frame / 2)
		require.NoError(t, err)
		total += n
	}
	require.Equal(t, 10, total)

	want, _ := single.Snapshot()
	for name, w := range map[string]*World{"per frame": perFrame, "half frame": halfFrame} {
		got, _ := w.Snapshot()
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s diverged from single call (-want +got):\n%s", name, diff)
		}
	}
}

func TestMaxRealDeltaClamp(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	steps, err := w.Step(5)
	require.NoError(t, err)
	// 0.1s at 60Hz
	assert.Equal(t, 6, steps)

	steps, err = w.Step(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, steps)
}

func TestTimeScale(t *testing.T) {
	cfg := frictionless()
	cfg.TimeScale = 0.5
	w := newTestWorld(t, cfg)
	steps, _ := w.Step(10 * frame)
	assert.Equal(t, 5, steps)

	require.NoError(t, w.SetParams(ParamsPatch{TimeScale: Float(0)}))
	steps, _ = w.Step(10 * frame)
	assert.Equal(t, 0, steps)
}

func TestTimeScaleBoundsStepCost(t *testing.T) {
	cfg := frictionless()
	w := newTestWorld(t, cfg)
	for i := 0; i < 4; i++ {
		spawn(t, w, vmath.V2(float64(i)*3, 0), vmath.V2(1, 0), 1, 1, 0.5)
	}

	err := w.SetParams(ParamsPatch{TimeScale: Float(1e6)})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Equal(t, 1.0, w.Params().TimeScale)

	require.NoError(t, w.SetParams(ParamsPatch{TimeScale: Float(parameter.MaxTimeScale)}))
	steps, err := w.Step(10)
	require.NoError(t, err)

	limit := int(cfg.MaxRealDeltaTime*parameter.MaxTimeScale/cfg.FixedDeltaTime) + 1
	assert.LessOrEqual(t, steps, limit)
	assert.Positive(t, steps)
}

func TestNoInterpenetrationAfterResolve(t *testing.T) {
	w := newTestWorld(t, frictionless())
	spawn(t, w, vmath.V2(-0.8, 0), vmath.V2(1, 0), 1, 1, 0.5)
	spawn(t, w, vmath.V2(0.8, 0.3), vmath.V2(-1, 0), 1, 3, 0.5)

	stepN(t, w, 1)
	s, _ := w.Snapshot()
	d := s.Entities[0].Position.Distance(s.Entities[1].Position)
	if d < 2-1e-9 {
		t.Errorf("pair still overlaps after one pass: distance %v", d)
	}
}

func TestMomentumConservedAcrossSteps(t *testing.T) {
	w := newTestWorld(t, frictionless())
	spawn(t, w, vmath.V2(-4, 0.2), vmath.V2(6, 0), 1, 2, 1)
	spawn(t, w, vmath.V2(4, -0.2), vmath.V2(-2, 0), 1, 1, 1)

	before, _ := w.Snapshot()
	stepN(t, w, 120)
	after, _ := w.Snapshot()

	if !before.TotalMomentum().ApproxEqual(after.TotalMomentum(), 1e-9) {
		t.Errorf("momentum drifted: %v -> %v", before.TotalMomentum(), after.TotalMomentum())
	}
	if after.KineticEnergy() > before.KineticEnergy()+1e-9 {
		t.Errorf("energy grew: %v -> %v", before.KineticEnergy(), after.KineticEnergy())
	}
}

func TestSnapshotIdempotentAndDetached(t *testing.T) {
	w := newTestWorld(t, frictionless())
	id := spawn(t, w, vmath.V2(1, 2), vmath.V2(3, 4), 1, 1, 1)
	_, err := w.AddBoundary(vmath.V2(0, 10), vmath.V2(10, 10))
	require.NoError(t, err)
	stepN(t, w, 3)

	first, err := w.Snapshot()
	require.NoError(t, err)
	second, err := w.Snapshot()
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("consecutive snapshots differ (-first +second):\n%s", diff)
	}

	first.Entities[0].Position = vmath.V2(100, 100)
	first.Boundaries[0].P1 = vmath.V2(-100, -100)
	e, _ := w.Entity(id)
	assert.NotEqual(t, vmath.V2(100, 100), e.Position)
	third, _ := w.Snapshot()
	if diff := cmp.Diff(second, third, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("world changed through snapshot mutation:\n%s", diff)
	}
}

func TestStateMachine(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	var states []string
	w.Subscribe(event.EventStateChanged, func(ev event.Event) { states = append(states, ev.State) })

	assert.Equal(t, StateUninitialized, w.State())

	require.NoError(t, w.Pause())
	assert.Equal(t, StatePaused, w.State())
	assert.True(t, w.Params().Paused)
	steps, err := w.Step(1)
	require.NoError(t, err)
	assert.Equal(t, 0, steps)

	require.NoError(t, w.Resume())
	assert.Equal(t, StateRunning, w.State())
	require.NoError(t, w.SetParams(ParamsPatch{Paused: Bool(true)}))
	assert.Equal(t, StatePaused, w.State())
	require.NoError(t, w.SetParams(ParamsPatch{Paused: Bool(false)}))

	require.NoError(t, w.Dispose())
	assert.Equal(t, StateDisposed, w.State())
	assert.Equal(t, []string{"paused", "running", "paused", "running", "disposed"}, states)

	for _, to := range []State{StateRunning, StatePaused, StateUninitialized} {
		assert.False(t, StateDisposed.CanTransition(to))
	}
}

func TestFirstStepStartsWorld(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	_, err := w.Step(frame)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, w.State())
	assert.Equal(t, uint64(1), w.Tick())
}

func TestDisposedWorldRejectsCalls(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	id := spawn(t, w, vmath.Zero2, vmath.Zero2, 1, 1, 1)
	wall, _ := w.AddBoundary(vmath.V2(0, 5), vmath.V2(5, 5))
	require.NoError(t, w.Dispose())

	_, stepErr := w.Step(frame)
	_, spawnErr := w.SpawnEntity(physics.BodyConfig{Radius: 1, Mass: 1})
	_, addErr := w.AddBoundary(vmath.V2(0, 0), vmath.V2(1, 0))
	_, snapErr := w.Snapshot()
	_, entityErr := w.Entity(id)

	errs := map[string]error{
		"step":     stepErr,
		"spawn":    spawnErr,
		"remove":   w.RemoveEntity(id),
		"add":      addErr,
		"move":     w.MoveBoundaryEndpoint(wall, physics.EndpointP2, vmath.V2(9, 9)),
		"hover":    w.SetBoundaryHover(wall, true),
		"impulse":  w.ApplyImpulse(id, vmath.V2(1, 0)),
		"params":   w.SetParams(ParamsPatch{Gravity: Float(1)}),
		"pause":    w.Pause(),
		"resume":   w.Resume(),
		"start":    w.Start(),
		"dispose":  w.Dispose(),
		"snapshot": snapErr,
		"entity":   entityErr,
		"queue":    w.SetEventQueue(event.NewQueue()),
	}
	for name, err := range errs {
		if !errors.Is(err, ErrWorldDisposed) {
			t.Errorf("%s: expected ErrWorldDisposed, got %v", name, err)
		}
	}
	assert.Equal(t, Params{}, w.Params())
}

func TestDisposeFromHandlerCompletesStep(t *testing.T) {
	w := newTestWorld(t, frictionless())
	spawn(t, w, vmath.V2(-0.9, 0), vmath.V2(3, 0), 1, 1, 1)
	spawn(t, w, vmath.V2(0.9, 0), vmath.V2(-3, 0), 1, 1, 1)
	w.OnCollision(func(physics.Contact) {
		require.NoError(t, w.Dispose())
	})

	steps, err := w.Step(5 * frame)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
	assert.Equal(t, StateDisposed, w.State())
}

func TestPauseResumeFromHandlerKeepsStepping(t *testing.T) {
	w := newTestWorld(t, frictionless())
	spawn(t, w, vmath.V2(-0.9, 0), vmath.V2(3, 0), 1, 1, 1)
	spawn(t, w, vmath.V2(0.9, 0), vmath.V2(-3, 0), 1, 1, 1)
	toggled := false
	w.OnCollision(func(physics.Contact) {
		if toggled {
			return
		}
		toggled = true
		require.NoError(t, w.Pause())
		require.NoError(t, w.Resume())
	})

	steps, err := w.Step(5*frame + frame/2)
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, 5, steps)
	assert.Equal(t, StateRunning, w.State())

	// The leftover half frame is discarded by the resume
	steps, err = w.Step(frame / 2)
	require.NoError(t, err)
	assert.Equal(t, 0, steps)
}

func TestSetParamsValidation(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	before := w.Params()

	err := w.SetParams(ParamsPatch{Gravity: Float(3), GlobalFriction: Float(2)})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Equal(t, before, w.Params(), "rejected patch must not partially apply")

	require.NoError(t, w.SetParams(ParamsPatch{Gravity: Float(3)}))
	assert.Equal(t, 3.0, w.Params().Gravity)
	assert.Equal(t, before.GlobalFriction, w.Params().GlobalFriction)
}

func TestBoundaryOperations(t *testing.T) {
	w := newTestWorld(t, DefaultConfig())
	id, err := w.AddBoundary(vmath.V2(0, 0), vmath.V2(10, 0))
	require.NoError(t, err)

	_, err = w.AddBoundary(vmath.V2(1, 1), vmath.V2(1, 1))
	assert.ErrorIs(t, err, physics.ErrInvalidBoundaryConfig)

	require.NoError(t, w.MoveBoundaryEndpoint(id, physics.EndpointP2, vmath.V2(5, 5)))
	err = w.MoveBoundaryEndpoint(id, physics.EndpointP2, vmath.V2(0, 0))
	assert.ErrorIs(t, err, physics.ErrInvalidBoundaryConfig)

	require.NoError(t, w.SetBoundaryHover(id, true))
	s, _ := w.Snapshot()
	b, ok := s.Boundary(id)
	require.True(t, ok)
	assert.Equal(t, vmath.V2(5, 5), b.P2)
	assert.True(t, b.Hovered)

	require.NoError(t, w.RemoveBoundary(id))
	assert.ErrorIs(t, w.RemoveBoundary(id), ErrUnknownBoundary)
	assert.ErrorIs(t, w.SetBoundaryHover(id, false), ErrUnknownBoundary)
}

func TestEventQueueMirrorsEvents(t *testing.T) {
	q := event.NewQueue()
	w, err := NewWorld(frictionless(), WithEventQueue(q))
	require.NoError(t, err)
	spawn(t, w, vmath.V2(-0.9, 0), vmath.V2(3, 0), 1, 1, 1)
	spawn(t, w, vmath.V2(0.9, 0), vmath.V2(-3, 0), 1, 1, 1)
	stepN(t, w, 1)

	counts := make(map[event.EventType]int)
	for _, ev := range q.Consume() {
		counts[ev.Type]++
	}
	assert.Equal(t, 2, counts[event.EventEntitySpawned])
	assert.Equal(t, 1, counts[event.EventCollision])
	assert.Equal(t, 1, counts[event.EventStateChanged])
}
