package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	EventConnectionConfirmed = "connectionConfirmed"
	EventClientMessage       = "clientMessage"
	EventMessage             = "message"
)

// Presence marks users online/offline out of band; the hub tolerates not
// having one.
type Presence interface {
	SetPresence(ctx context.Context, userID string, online bool) error
}

// Hub owns the registry of live connections and fans events out to all of
// them. The registry is the only shared state; it is never handed out.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	presence Presence
	log      *zap.SugaredLogger
}

func NewHub(presence Presence, log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		presence: presence,
		log:      log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Infow("ws connected", "connection_id", c.id, "clients", n)
	if h.presence != nil && c.userID != "" {
		if err := h.presence.SetPresence(context.Background(), c.userID, true); err != nil {
			h.log.Warnw("set presence", "error", err, "user_id", c.userID)
		}
	}

	confirm, _ := json.Marshal("connected to dm-service")
	h.deliver(c, Event{Event: EventConnectionConfirmed, Data: confirm})
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}

	c.close()
	h.log.Infow("ws disconnected", "connection_id", c.id, "clients", n)
	if h.presence != nil && c.userID != "" {
		if err := h.presence.SetPresence(context.Background(), c.userID, false); err != nil {
			h.log.Warnw("set presence", "error", err, "user_id", c.userID)
		}
	}
}

// Broadcast fans an event out to every registered connection. Non-blocking:
// a full or closing client drops the event rather than stalling the rest.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.deliver(c, ev)
	}
}

func (h *Hub) deliver(c *Client, ev Event) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- ev:
	default:
		h.log.Warnw("ws send dropped", "connection_id", c.id, "event", ev.Event)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
