package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return NewHub(nil, zap.NewNop().Sugar())
}

// test clients carry no socket; pumps are never started and events are read
// straight off the send channel.
func newTestClient(userID string) *Client {
	return newClient(nil, userID)
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.send:
		return ev
	default:
		t.Fatalf("no event queued for connection %s", c.id)
		return Event{}
	}
}

func TestRegisterSendsConnectionConfirmed(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	c := newTestClient("")

	hub.Register(c)
	req.Equal(1, hub.Count())

	ev := recvEvent(t, c)
	req.Equal(EventConnectionConfirmed, ev.Event)

	var msg string
	req.NoError(json.Unmarshal(ev.Data, &msg))
	req.NotEmpty(msg)
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()

	c1, c2, c3 := newTestClient(""), newTestClient(""), newTestClient("")
	for _, c := range []*Client{c1, c2, c3} {
		hub.Register(c)
		recvEvent(t, c) // drain the confirmation
	}

	payload := json.RawMessage(`{"message":"hello","senderId":"alice","receiverId":"bob"}`)
	hub.Broadcast(Event{Event: EventMessage, Data: payload})

	for _, c := range []*Client{c1, c2, c3} { // sender included
		ev := recvEvent(t, c)
		req.Equal(EventMessage, ev.Event)
		req.JSONEq(string(payload), string(ev.Data))
	}
}

func TestBroadcastSkipsDeregisteredConnection(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()

	c1, c2, c3 := newTestClient(""), newTestClient(""), newTestClient("")
	for _, c := range []*Client{c1, c2, c3} {
		hub.Register(c)
		recvEvent(t, c)
	}

	hub.Unregister(c2)
	req.Equal(2, hub.Count())

	hub.Broadcast(Event{Event: EventMessage, Data: json.RawMessage(`"after"`)})

	req.Len(c1.send, 1)
	req.Len(c2.send, 0)
	req.Len(c3.send, 1)
}

func TestBroadcastDropsWhenClientFull(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	c := newTestClient("")
	hub.Register(c)
	recvEvent(t, c)

	// fill the queue; further broadcasts must drop, not block
	for i := 0; i < cap(c.send)+10; i++ {
		hub.Broadcast(Event{Event: EventMessage, Data: json.RawMessage(`"x"`)})
	}
	req.Len(c.send, cap(c.send))
}

func TestRegistrySafeUnderConcurrentChurn(t *testing.T) {
	hub := newTestHub()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c := newTestClient("")
				hub.Register(c)
				hub.Unregister(c)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Broadcast(Event{Event: EventMessage, Data: json.RawMessage(`"churn"`)})
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 0, hub.Count())
}

type recordingPresence struct {
	mu     sync.Mutex
	states map[string]bool
}

func (p *recordingPresence) SetPresence(_ context.Context, userID string, online bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[userID] = online
	return nil
}

func TestPresenceTracksConnectAndDisconnect(t *testing.T) {
	req := require.New(t)
	presence := &recordingPresence{states: make(map[string]bool)}
	hub := NewHub(presence, zap.NewNop().Sugar())

	c := newTestClient("alice")
	hub.Register(c)
	req.True(presence.states["alice"])

	hub.Unregister(c)
	req.False(presence.states["alice"])
}
