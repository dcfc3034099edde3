// Package ws streams session events to connected count stations.
package ws

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const broadcastBuffer = 256

// BroadcastMessage packages a payload for a session-scoped broadcast.
type BroadcastMessage struct {
	SessionID string
	Payload   []byte
}

// Hub manages active clients and session-scoped broadcasts.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
	done       chan struct{}
	stopOnce   sync.Once
	dropped    atomic.Uint64
}

// NewHub builds a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run starts the hub loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() {
		close(h.done)
		for client := range h.clients {
			delete(h.clients, client)
			close(client.Send)
		}
	})

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				if client.SessionID() != message.SessionID {
					continue
				}
				select {
				case client.Send <- message.Payload:
				default:
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

// Broadcast queues a payload for every client watching sessionID. It never
// blocks; when the queue is full the payload is dropped and false returned.
func (h *Hub) Broadcast(sessionID string, payload []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- BroadcastMessage{SessionID: sessionID, Payload: payload}:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

// Dropped counts payloads discarded because the queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Client represents a websocket connection.
type Client struct {
	Conn      *websocket.Conn
	Hub       *Hub
	Send      chan []byte
	mu        sync.RWMutex
	sessionID string
}

// NewClient returns a client ready for registration.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		Hub:  hub,
		Send: make(chan []byte, 256),
	}
}

func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) SetSessionID(sessionID string) {
	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()
}
