package parameter

import "time"

// Websocket session tuning
const (
	// NetworkHeartbeatInterval is the ping period; must be below NetworkPongWait
	NetworkHeartbeatInterval = 10 * time.Second

	// NetworkPongWait is how long a silent client survives
	NetworkPongWait = 30 * time.Second

	// NetworkShutdownTimeout bounds graceful HTTP shutdown
	NetworkShutdownTimeout = 5 * time.Second

	// NetworkBufferSize is the websocket read and write buffer size
	NetworkBufferSize = 16 * 1024
)

// Remote clients send world coordinates, so pick radii are in world units
const (
	NetworkGrabTolerance  = 0.5
	NetworkHoverTolerance = 0.25
)
