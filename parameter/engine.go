package parameter

import "time"

// Host loop timing
const (
	// FrameUpdateInterval is the host frame interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// SnapshotInterval is the network snapshot broadcast interval
	SnapshotInterval = 33 * time.Millisecond

	// CommandQueueSize is the buffered host command channel capacity
	CommandQueueSize = 256
)

// Event queue
const (
	// EventQueueSize is the fixed capacity of the collision event ring buffer
	EventQueueSize = 2048
)
