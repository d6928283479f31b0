package client

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gomoku-backend/pkg/proto"
)

const (
	sendQueueSize = 32
	pingPeriod    = 30 * time.Second
)

// Conn abstracts the websocket connection so the gateway can be tested
// without a network.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client wraps one live connection. Inbound messages are read by the
// gateway's per-connection loop; outbound events go through a buffered send
// queue drained by WritePump, so writers never touch the websocket
// concurrently and a broadcast enqueued first is always delivered first.
type Client struct {
	ID string

	mu        sync.RWMutex
	sessionID string
	name      string

	conn      Conn
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func New(id string, conn Conn) *Client {
	return &Client{
		ID:     id,
		name:   "Anonymous",
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		closed: make(chan struct{}),
	}
}

// SetIdentity records the session identifier and display name declared in a
// join handshake. An empty name keeps the Anonymous default.
func (c *Client) SetIdentity(sessionID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	if name != "" {
		c.name = name
	}
}

func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Notify queues an event for delivery. Sends to a closed peer are dropped;
// so are sends to a consumer whose queue is full, which is indistinguishable
// from a dead peer as far as the protocol cares.
func (c *Client) Notify(msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal outbound message", "client.id", c.ID, "error", err)
		return
	}

	select {
	case <-c.closed:
	case c.send <- data:
	default:
		slog.Warn("send queue full, dropping message", "client.id", c.ID, "message.type", msg.Type)
	}
}

// Open reports whether the connection is still live.
func (c *Client) Open() bool {
	select {
	case <-c.closed:
		return false
	default:
		return true
	}
}

// Read blocks for the next inbound message.
func (c *Client) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// WritePump drains the send queue onto the websocket and keeps the
// connection alive with pings. One goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("write failed, closing connection", "client.id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
