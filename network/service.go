package network

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/service"
	"github.com/lixenwraith/collide/status"
)

var (
	_ service.Service  = (*Service)(nil)
	_ service.Disabler = (*Service)(nil)
)

// ErrNoRunner is returned by Init when no runner was supplied
var ErrNoRunner = errors.New("network service requires an engine runner")

// Service wraps Server as a hub-managed service
type Service struct {
	config *Config
	server *Server

	runner  *engine.Runner
	queue   *event.Queue
	metrics *status.Registry
	logger  *zap.Logger

	disabled atomic.Bool
}

// NewService creates a network service with default config
func NewService() *Service {
	return &Service{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "network"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// Accepts *Config, config.ServerConfig, *engine.Runner, *event.Queue, *status.Registry and *zap.Logger in any order
func (s *Service) Init(args ...any) error {
	for _, arg := range args {
		switch v := arg.(type) {
		case *Config:
			if v != nil {
				s.config = v
			}
		case config.ServerConfig:
			s.config = FromServerConfig(v)
		case *engine.Runner:
			s.runner = v
		case *event.Queue:
			s.queue = v
		case *status.Registry:
			s.metrics = v
		case *zap.Logger:
			s.logger = v.Named("network")
		}
	}

	if s.config.Address == "" {
		s.disabled.Store(true)
		return nil
	}
	if s.runner == nil {
		return ErrNoRunner
	}

	s.server = NewServer(s.config, s.runner, s.queue, s.logger)
	s.server.Instrument(s.metrics)
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if s.disabled.Load() || s.server == nil {
		return nil
	}
	return s.server.Start()
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.server != nil {
		return s.server.Stop()
	}
	return nil
}

// Server returns the wrapped server, nil until Init
func (s *Service) Server() *Server {
	return s.server
}

// ClientCount returns connected client count
func (s *Service) ClientCount() int {
	if s.server == nil {
		return 0
	}
	return s.server.ClientCount()
}

// IsDisabled reports whether Init found no listen address
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// IsRunning returns true if the server is accepting connections
func (s *Service) IsRunning() bool {
	return s.server != nil && s.server.IsRunning()
}
