package engine

import "errors"

var (
	// ErrWorldDisposed is returned by every mutating call after Dispose
	ErrWorldDisposed = errors.New("world disposed")

	// ErrInvalidParams rejects out-of-range world configuration or parameter patches
	ErrInvalidParams = errors.New("invalid world params")

	// ErrUnknownEntity is returned for ids never spawned or already removed
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownBoundary is returned for ids never added or already removed
	ErrUnknownBoundary = errors.New("unknown boundary")

	// ErrStepInProgress rejects mutations that are only legal between steps
	ErrStepInProgress = errors.New("step in progress")
)

// ErrCommandQueueFull is returned by Runner.Submit when the host outpaces the loop
var ErrCommandQueueFull = errors.New("command queue full")
