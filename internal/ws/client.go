package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Event is the envelope exchanged on the real-time channel.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one live websocket connection. It exists only for the lifetime
// of the socket and has no relation to persisted conversations.
type Client struct {
	id     string
	userID string
	ws     *websocket.Conn
	send   chan Event
	done   chan struct{}
	once   sync.Once
}

func newClient(conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		ws:     conn,
		send:   make(chan Event, 256),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// close signals shutdown. The send channel is never closed, so broadcasters
// holding a stale pointer cannot panic.
func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(1024 * 64)
	_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// ignore invalid JSON from client, don't disconnect
			continue
		}
		if ev.Event != EventClientMessage {
			continue
		}
		// relay the payload verbatim to every connection, sender included
		hub.Broadcast(Event{Event: EventMessage, Data: ev.Data})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
			return
		}
	}
}
