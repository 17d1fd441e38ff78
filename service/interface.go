package service

// Service is the lifecycle contract for host subsystems: audio output, snapshot streaming
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - service-specific wiring (queues, config sections)
//  3. Start() - launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	Dependencies() []string

	// Init configures the service; unrecognized args are ignored
	Init(args ...any) error

	// Start begins operation, called after every service initialized
	Start() error

	// Stop halts operation; must be idempotent
	Stop() error
}
