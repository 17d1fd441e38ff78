package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/service"
	"github.com/lixenwraith/collide/status"
)

var (
	_ service.Service  = (*Service)(nil)
	_ service.Disabler = (*Service)(nil)
)

// Service drains a world event queue into a SoundManager
// Degrades to disabled when no audio device is available
type Service struct {
	manager  *SoundManager
	queue    *event.Queue
	logger   *zap.Logger
	metrics  *status.Registry
	cfg      config.AudioConfig
	interval time.Duration
	buf      []event.Event // Drain goroutine only

	disabled atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService() *Service {
	return &Service{
		cfg:      config.NewDefaultConfig().Audio,
		logger:   zap.NewNop(),
		interval: parameter.AudioDrainInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Service) Name() string { return "audio" }

func (s *Service) Dependencies() []string { return nil }

// Init picks config.AudioConfig, *event.Queue, *status.Registry and *zap.Logger out of args
func (s *Service) Init(args ...any) error {
	for _, arg := range args {
		switch v := arg.(type) {
		case config.AudioConfig:
			s.cfg = v
		case *event.Queue:
			s.queue = v
		case *status.Registry:
			s.metrics = v
		case *zap.Logger:
			s.logger = v.Named("audio")
		}
	}

	if !s.cfg.Enabled || s.queue == nil {
		s.disabled.Store(true)
		return nil
	}

	s.manager = NewSoundManager(s.cfg.MasterVolume, s.cfg.SoundsPerSecond, s.cfg.Burst)
	s.manager.Instrument(s.metrics)
	if err := s.manager.Initialize(); err != nil {
		s.logger.Warn("audio unavailable, continuing without sound", zap.Error(err))
		s.disabled.Store(true)
		s.manager = nil
	}
	return nil
}

// Start launches the drain loop unless disabled
func (s *Service) Start() error {
	if s.disabled.Load() {
		return nil
	}
	s.wg.Add(1)
	go s.drainLoop()
	return nil
}

// Stop is idempotent
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		if s.manager != nil {
			played, dropped := s.manager.Stats()
			s.logger.Debug("audio stopped", zap.Uint64("played", played), zap.Uint64("dropped", dropped))
			s.manager.Cleanup()
		}
	})
	return nil
}

func (s *Service) drainLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.drain()
		}
	}
}

func (s *Service) drain() {
	s.buf = s.queue.ConsumeInto(s.buf)
	for _, ev := range s.buf {
		if ev.Type == event.EventCollision {
			s.manager.Play(ev.Contact)
		}
	}
}

// IsDisabled reports whether sound output is off
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Manager returns the sound manager, nil when disabled
func (s *Service) Manager() *SoundManager {
	if s.disabled.Load() {
		return nil
	}
	return s.manager
}
