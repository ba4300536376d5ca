// Package realtime pushes contact-exchange events to connected users over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bwise1/upzunction/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks connections per user. Run owns every client's send channel and
// is the only place that closes it.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	send       chan directEvent
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan directEvent, 256),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run serves registrations and deliveries until ctx is cancelled, then closes every connection.
// A client whose buffer is full is dropped rather than waited for.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, exists := h.clients[client]; exists {
				h.remove(client)
				h.logger.Debug("websocket client disconnected", "user_id", client.UserID)
			}
			h.mu.Unlock()

		case direct := <-h.send:
			h.mu.Lock()
			for client := range h.clients {
				if client.UserID != direct.receiverID {
					continue
				}
				select {
				case client.send <- direct.frame:
				default:
					h.remove(client)
					h.logger.Warn("websocket client too slow, dropping it", "user_id", client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

// Notify queues an event for every connection of userID. Events for users
// without a connection are dropped, and so are events when the queue is full.
func (h *Hub) Notify(userID uuid.UUID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode realtime payload", "event", event, "error", err)
		return
	}
	frame, err := json.Marshal(Event{Type: event, Payload: data})
	if err != nil {
		h.logger.Error("failed to encode realtime event", "event", event, "error", err)
		return
	}

	select {
	case h.send <- directEvent{receiverID: userID, frame: frame}:
	default:
		h.logger.Warn("realtime queue full, dropping event", "event", event, "user_id", userID)
	}
}

// Connected reports how many connections userID has open.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for client := range h.clients {
		if client.UserID == userID {
			n++
		}
	}
	return n
}

// HandleConnections upgrades the request and keeps the connection registered
// until the client goes away. Incoming frames are ignored.
func (h *Hub) HandleConnections(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(conn, userID)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	go client.writePump()
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	client.readPump()
}
