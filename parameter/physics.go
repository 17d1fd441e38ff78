package parameter

// World defaults, all in simulation units and seconds
const (
	// DefaultGravity is the downward (+Y) acceleration
	DefaultGravity = 0.0

	// DefaultGlobalFriction is the per-step velocity multiplier, (0, 1]
	DefaultGlobalFriction = 0.99

	// DefaultFixedDeltaTime is the physics step size
	DefaultFixedDeltaTime = 1.0 / 60.0

	// DefaultMaxRealDeltaTime caps wall-clock time consumed by a single Step
	// Prevents accumulator runaway after the host stalls
	DefaultMaxRealDeltaTime = 0.1

	// DefaultTimeScale multiplies wall-clock time before accumulation
	DefaultTimeScale = 1.0

	// MaxTimeScale bounds simulated time per Step to MaxRealDeltaTime*MaxTimeScale
	MaxTimeScale = 8.0
)

// Resolver tuning
const (
	// DefaultContactThreshold is the minimum approach speed for an entity pair contact to be reported
	// Suppresses notification storms on resting contact
	DefaultContactThreshold = 0.1

	// DefaultTangentialDamping is the fraction of tangential velocity removed on a boundary bounce
	DefaultTangentialDamping = 0.02

	// AccumulatorTolerance absorbs float drift so chunked Step calls yield identical step counts
	AccumulatorTolerance = 1e-9
)

// Boundary feedback
const (
	// HitFlashDuration is the cosmetic flash set on a boundary hit, in seconds
	HitFlashDuration = 0.25
)

// Interaction
const (
	// DefaultGrabTolerance is the pointer distance, in screen pixels, that grabs a boundary endpoint
	DefaultGrabTolerance = 12.0

	// DefaultHoverTolerance is the pointer distance, in screen pixels, that highlights a boundary
	DefaultHoverTolerance = 6.0
)
