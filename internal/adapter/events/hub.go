package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 50 * time.Second
	sendBuffer   = 64
)

// Client is one websocket subscriber. An empty identity receives every event.
type Client struct {
	conn     *websocket.Conn
	identity string
	send     chan []byte
}

func (c *Client) wants(event entity.GamificationEvent) bool {
	return c.identity == "" || c.identity == event.Identity
}

// writePump owns every write to the connection. It exits when send is
// closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub broadcasts gamification events to connected websocket clients.
type Hub struct {
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty hub. checkOrigin may be nil to accept any origin.
func NewHub(logger logrus.FieldLogger, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.WithField("clients", total).Debug("event client registered")
}

// Unregister removes the client and closes its send queue, which stops its
// writer.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	ok := h.remove(client)
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.WithField("clients", total).Debug("event client unregistered")
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	close(client.send)
	return true
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues the event for every interested client without waiting on
// the network. Clients whose queue is full are dropped.
func (h *Hub) Publish(_ context.Context, event entity.GamificationEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Warn("failed to encode gamification event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(event) {
			continue
		}
		select {
		case c.send <- message:
		default:
			h.remove(c)
			h.logger.WithField("identity", c.identity).Warn("event client too slow, dropped")
		}
	}
}

// ServeHTTP upgrades the request and keeps the client registered until the
// peer disconnects. The optional identity query parameter filters events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{
		conn:     conn,
		identity: r.URL.Query().Get("identity"),
		send:     make(chan []byte, sendBuffer),
	}
	h.Register(client)
	defer h.Unregister(client)
	go client.writePump()

	// Inbound messages are ignored; reading detects the close frame.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

var _ usecase.EventPublisher = (*Hub)(nil)
