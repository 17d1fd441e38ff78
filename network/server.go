package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/input"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/status"
)

// Server streams world snapshots to websocket clients and turns their messages into runner commands
type Server struct {
	config  *Config
	runner  *engine.Runner
	queue   *event.Queue // Optional; collision frames are skipped when nil
	logger  *zap.Logger
	clients *ClientManager

	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener

	// Per-client interaction ports, touched only inside runner commands
	ports map[uuid.UUID]*input.Port

	metrics       *status.Registry
	framesDropped *atomic.Uint64
	clientGauge   *status.Gauge

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewServer wires a server to a runner; queue and logger may be nil
func NewServer(cfg *Config, runner *engine.Runner, queue *event.Queue, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:  cfg,
		runner:  runner,
		queue:   queue,
		logger:  logger,
		clients: NewClientManager(cfg.MaxClients),
		ports:   make(map[uuid.UUID]*input.Port),
		stopCh:  make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	s.Instrument(nil)
	return s
}

// Instrument counts dropped frames and connected clients in reg and serves it
// on StatusPath; call before Start or Handler
func (s *Server) Instrument(reg *status.Registry) {
	s.metrics = reg
	s.framesDropped = reg.Counter(status.NetworkDropped)
	s.clientGauge = reg.Gauge(status.NetworkClients)
}

// checkOrigin enforces same-origin unless origins are configured
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.config.AllowedOrigins) == 0 {
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
	return slices.Contains(s.config.AllowedOrigins, "*") || slices.Contains(s.config.AllowedOrigins, origin)
}

// Handler returns the HTTP handler serving the websocket endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleWS)
	if s.config.StatusPath != "" && s.metrics != nil {
		mux.HandleFunc(s.config.StatusPath, s.handleStatus)
	}
	return mux
}

// Start binds the listener and begins serving and broadcasting
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen %s: %w", s.config.Address, err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.WriteTimeout,
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", zap.Error(err))
		}
	}()
	go s.broadcastLoop()

	s.logger.Info("server listening", zap.String("address", ln.Addr().String()), zap.String("path", s.config.Path))
	return nil
}

// StartBroadcast runs only the broadcast loop, for hosts that mount Handler themselves
func (s *Server) StartBroadcast() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.broadcastLoop()
}

// Stop shuts down HTTP, disconnects clients and waits for goroutines
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stopCh)

	var err error
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), parameter.NetworkShutdownTimeout)
		err = s.httpSrv.Shutdown(ctx)
		cancel()
	}

	s.clients.Close()
	s.wg.Wait()
	return err
}

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ClientCount returns connected client count
func (s *Server) ClientCount() int {
	return s.clients.Count()
}

// IsRunning returns server state
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.running.Load() {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}
	if s.clients.Full() {
		http.Error(w, ErrMaxClients.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.New(), conn, s.config, s.framesDropped)

	// Queue the greeting before registering so broadcasts cannot overtake it
	var tick uint64
	snap, haveSnap := s.runner.Latest()
	if haveSnap {
		tick = snap.Tick
	}
	s.sendTo(c, MsgWelcome, WelcomePayload{ClientID: c.ID.String(), Tick: tick})
	if haveSnap {
		if frame, err := EncodeSnapshot(&snap); err == nil {
			c.Send(frame)
		}
	}

	if err := s.clients.Add(c); err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(s.config.WriteTimeout))
		c.Close()
		return
	}
	s.clientGauge.Set(float64(s.clients.Count()))
	log := s.logger.With(zap.Stringer("client", c.ID), zap.String("addr", c.Addr))
	log.Info("client connected", zap.Int("clients", s.clients.Count()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		c.writeLoop()
	}()

	if err := c.readLoop(s.handleMessage); err != nil {
		log.Debug("client read failed", zap.Error(err))
	}

	s.clients.Remove(c.ID)
	s.clientGauge.Set(float64(s.clients.Count()))
	s.dropPort(c.ID)
	log.Info("client disconnected",
		zap.Uint64("dropped_frames", c.Dropped()),
		zap.Int("clients", s.clients.Count()),
	)
}

// handleStatus writes the registry snapshot
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.metrics.Snapshot()); err != nil {
		s.logger.Debug("status write failed", zap.Error(err))
	}
}

// handleMessage validates a frame and submits the matching world command
func (s *Server) handleMessage(c *Client, data []byte) {
	msg, err := Decode(data)
	if err != nil {
		s.reject(c, 0, err)
		return
	}
	if msg.Seq > c.InSeq.Load() {
		c.InSeq.Store(msg.Seq)
	}

	var cmd engine.Command
	switch msg.Type {
	case MsgPointer:
		var p PointerPayload
		if err := DecodePayload(msg, &p); err != nil {
			s.reject(c, msg.Seq, err)
			return
		}
		cmd = s.pointerCommand(c, p)
	case MsgParam:
		var p ParamPayload
		if err := DecodePayload(msg, &p); err != nil {
			s.reject(c, msg.Seq, err)
			return
		}
		key, err := input.ParseParamKey(p.Key)
		if err != nil {
			s.reject(c, msg.Seq, err)
			return
		}
		cmd = func(w *engine.World) error {
			return s.portFor(c.ID, w).SetParam(key, p.Value)
		}
	case MsgSpawn:
		var body physics.BodyConfig
		if err := DecodePayload(msg, &body); err != nil {
			s.reject(c, msg.Seq, err)
			return
		}
		if err := body.Validate(); err != nil {
			s.reject(c, msg.Seq, err)
			return
		}
		cmd = func(w *engine.World) error {
			_, err := w.SpawnEntity(body)
			return err
		}
	case MsgPause:
		var p PausePayload
		if err := DecodePayload(msg, &p); err != nil {
			s.reject(c, msg.Seq, err)
			return
		}
		cmd = func(w *engine.World) error {
			return w.SetParams(engine.ParamsPatch{Paused: engine.Bool(p.Paused)})
		}
	default:
		s.reject(c, msg.Seq, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, msg.Type))
		return
	}

	seq := msg.Seq
	wrapped := func(w *engine.World) error {
		err := cmd(w)
		if err != nil {
			s.reject(c, seq, err)
		}
		return err
	}
	if err := s.runner.Submit(wrapped); err != nil {
		s.reject(c, seq, err)
	}
}

func (s *Server) pointerCommand(c *Client, p PointerPayload) engine.Command {
	return func(w *engine.World) error {
		port := s.portFor(c.ID, w)
		switch p.Action {
		case PointerDown:
			_, err := port.PointerDown(p.X, p.Y)
			return err
		case PointerMove:
			return port.PointerMove(p.X, p.Y)
		case PointerUp:
			return port.PointerUp(p.X, p.Y)
		case PointerCancel:
			port.Cancel()
			return nil
		default:
			return fmt.Errorf("%w: unknown pointer action %q", ErrMalformedMessage, p.Action)
		}
	}
}

// portFor returns the client's port, creating it on first use; runner goroutine only
func (s *Server) portFor(id uuid.UUID, w *engine.World) *input.Port {
	if p, ok := s.ports[id]; ok {
		return p
	}
	p := input.NewPort(w, nil, s.logger.With(zap.Stringer("client", id)))
	p.SetTolerance(parameter.NetworkGrabTolerance, parameter.NetworkHoverTolerance)
	s.ports[id] = p
	return p
}

// dropPort releases a disconnected client's drag and hover on the runner goroutine
func (s *Server) dropPort(id uuid.UUID) {
	err := s.runner.Submit(func(w *engine.World) error {
		p, ok := s.ports[id]
		if !ok {
			return nil
		}
		delete(s.ports, id)
		return p.Release()
	})
	if err != nil {
		s.logger.Warn("port release not queued", zap.Stringer("client", id), zap.Error(err))
	}
}

func (s *Server) reject(c *Client, seq uint64, err error) {
	s.sendTo(c, MsgError, ErrorPayload{Seq: seq, Message: err.Error()})
}

func (s *Server) sendTo(c *Client, t MessageType, payload any) {
	frame, err := Encode(t, payload)
	if err != nil {
		s.logger.Error("encode failed", zap.String("type", string(t)), zap.Error(err))
		return
	}
	c.Send(frame)
}

// broadcastLoop publishes the latest snapshot and pending collisions every SnapshotInterval
func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if s.queue != nil {
				s.broadcastCollisions()
			}

			snap, ok := s.runner.Latest()
			if !ok || s.clients.Count() == 0 {
				continue
			}
			frame, err := EncodeSnapshot(&snap)
			if err != nil {
				s.logger.Error("snapshot encode failed", zap.Error(err))
				continue
			}
			s.clients.Broadcast(frame)
		}
	}
}

// broadcastCollisions drains the event queue into one collision frame
func (s *Server) broadcastCollisions() {
	events := s.queue.Consume()
	if len(events) == 0 {
		return
	}

	payload := CollisionPayload{Contacts: make([]physics.Contact, 0, len(events))}
	for _, ev := range events {
		if ev.Type != event.EventCollision {
			continue
		}
		payload.Contacts = append(payload.Contacts, ev.Contact)
		payload.Tick = ev.Tick
	}
	if len(payload.Contacts) == 0 || s.clients.Count() == 0 {
		return
	}

	frame, err := Encode(MsgCollision, payload)
	if err != nil {
		s.logger.Error("collision encode failed", zap.Error(err))
		return
	}
	s.clients.Broadcast(frame)
}
