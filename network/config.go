package network

import (
	"time"

	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/parameter"
)

// Config holds websocket server configuration
type Config struct {
	// Address to bind
	Address string

	// Path the websocket endpoint is mounted on
	Path string

	// StatusPath serves the metrics registry as JSON; empty disables it
	StatusPath string

	// Connection limits
	MaxClients int
	ReadLimit  int64

	// Origins accepted during upgrade; empty enforces same-origin, "*" allows all
	AllowedOrigins []string

	// Timing
	SnapshotInterval  time.Duration
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration
	PongWait          time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		Address:           ":7777",
		Path:              "/ws",
		StatusPath:        "/status",
		MaxClients:        16,
		ReadLimit:         64 * 1024,
		SnapshotInterval:  parameter.SnapshotInterval,
		WriteTimeout:      5 * time.Second,
		HeartbeatInterval: parameter.NetworkHeartbeatInterval,
		PongWait:          parameter.NetworkPongWait,
		ReadBufferSize:    parameter.NetworkBufferSize,
		WriteBufferSize:   parameter.NetworkBufferSize,
		SendQueueSize:     64,
	}
}

// FromServerConfig overlays host configuration onto defaults
func FromServerConfig(sc config.ServerConfig) *Config {
	cfg := DefaultConfig()
	if sc.Address != "" {
		cfg.Address = sc.Address
	}
	if sc.Path != "" {
		cfg.Path = sc.Path
	}
	if sc.MaxClients > 0 {
		cfg.MaxClients = sc.MaxClients
	}
	if sc.ReadLimit > 0 {
		cfg.ReadLimit = sc.ReadLimit
	}
	if sc.SnapshotInterval > 0 {
		cfg.SnapshotInterval = sc.SnapshotInterval
	}
	if sc.WriteTimeout > 0 {
		cfg.WriteTimeout = sc.WriteTimeout
	}
	if sc.SendQueueSize > 0 {
		cfg.SendQueueSize = sc.SendQueueSize
	}
	cfg.AllowedOrigins = append([]string(nil), sc.AllowedOrigins...)
	return cfg
}
