package network

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrMaxClients is returned when the registry is full
var ErrMaxClients = errors.New("max clients reached")

// Client is one websocket session
type Client struct {
	ID       uuid.UUID
	Addr     string
	LastSeen atomic.Int64 // UnixNano

	// Sequence tracking
	OutSeq atomic.Uint64 // Frames queued
	InSeq  atomic.Uint64 // Last seq received from the client

	conn   *websocket.Conn
	config *Config

	// Send queue, drop-on-full
	sendCh  chan []byte
	dropped atomic.Uint64
	total   *atomic.Uint64 // Server-wide drop counter, may be nil

	// Lifecycle
	closeCh   chan struct{}
	closeOnce sync.Once
}

// newClient creates a session from an upgraded connection
func newClient(id uuid.UUID, conn *websocket.Conn, cfg *Config, total *atomic.Uint64) *Client {
	c := &Client{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		conn:    conn,
		config:  cfg,
		sendCh:  make(chan []byte, cfg.SendQueueSize),
		total:   total,
		closeCh: make(chan struct{}),
	}
	c.LastSeen.Store(time.Now().UnixNano())
	return c
}

// Send queues a frame for transmission
// Returns false if the client is closed or its queue is full
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.closeCh:
		return false
	default:
	}

	select {
	case c.sendCh <- frame:
		c.OutSeq.Add(1)
		return true
	default:
		c.dropped.Add(1)
		if c.total != nil {
			c.total.Add(1)
		}
		return false
	}
}

// Dropped returns frames discarded because the queue was full
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Close initiates shutdown; safe to call more than once
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.conn.Close()
	})
}

// Done is closed once the client shuts down
func (c *Client) Done() <-chan struct{} {
	return c.closeCh
}

// readLoop reads frames until the connection fails
func (c *Client) readLoop(handler func(*Client, []byte)) error {
	defer c.Close()

	if c.config.ReadLimit > 0 {
		c.conn.SetReadLimit(c.config.ReadLimit)
	}
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastSeen.Store(time.Now().UnixNano())
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}

		c.LastSeen.Store(time.Now().UnixNano())
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		handler(c, data)
	}
}

// writeLoop sends queued frames and heartbeats
func (c *Client) writeLoop() {
	defer c.Close()

	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeCh:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.config.WriteTimeout))
			return
		case frame := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// ClientManager is the registry of live sessions
type ClientManager struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]*Client
	maxClients int
}

// NewClientManager creates a registry capped at maxClients
func NewClientManager(maxClients int) *ClientManager {
	return &ClientManager{
		clients:    make(map[uuid.UUID]*Client),
		maxClients: maxClients,
	}
}

// Add registers a client unless the registry is full
func (cm *ClientManager) Add(c *Client) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if len(cm.clients) >= cm.maxClients {
		return ErrMaxClients
	}
	cm.clients[c.ID] = c
	return nil
}

// Remove drops a client from the registry
func (cm *ClientManager) Remove(id uuid.UUID) {
	cm.mu.Lock()
	delete(cm.clients, id)
	cm.mu.Unlock()
}

// Get retrieves a client by ID
func (cm *ClientManager) Get(id uuid.UUID) (*Client, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, ok := cm.clients[id]
	return c, ok
}

// Broadcast queues frame on every client, returns how many accepted it
func (cm *ClientManager) Broadcast(frame []byte) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	sent := 0
	for _, c := range cm.clients {
		if c.Send(frame) {
			sent++
		}
	}
	return sent
}

// Count returns current connected client count
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// Full reports whether another client would be rejected
func (cm *ClientManager) Full() bool {
	return cm.Count() >= cm.maxClients
}

// Close disconnects all clients
func (cm *ClientManager) Close() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for _, c := range cm.clients {
		c.Close()
	}
	cm.clients = make(map[uuid.UUID]*Client)
}
