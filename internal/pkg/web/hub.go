package web

import (
	"sync"

	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// writePump sends queued messages to the connection until send is closed
func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// readPump discards incoming messages, it only detects closed connections
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

// Hub keeps connected websocket clients and broadcasts messages to them.
// Clients that are not able to keep up are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	noLogs  bool
}

func NewHub(noLogs bool) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		noLogs:  noLogs,
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if !h.noLogs {
		log.Info("Websocket client connected", zap.String("remote", c.conn.RemoteAddr().String()), zap.Int("clients", len(h.clients)), logger.Debug)
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop has to be called with mu held
func (h *Hub) drop(c *client) {
	_, ok := h.clients[c]
	if !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if !h.noLogs {
		log.Info("Websocket client disconnected", zap.String("remote", c.conn.RemoteAddr().String()), zap.Int("clients", len(h.clients)), logger.Debug)
	}
}

// Broadcast queues msg for every client
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.drop(c)
		}
	}
}

// send queues msg for a single client
func (h *Hub) send(c *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.clients[c]
	if !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client, new clients are rejected afterwards
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}
