package notification

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sent    []Event
	sendErr error
	closed  bool
}

func (s *fakeSession) Send(event Event) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, event)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func TestMemoryRegistry(t *testing.T) {
	reg := NewMemoryRegistry()
	assert.Zero(t, reg.Len())

	s := &fakeSession{}
	reg.Put("a", s)
	reg.Put("b", &fakeSession{})
	assert.Equal(t, 2, reg.Len())

	snapshot := reg.Snapshot()
	assert.Len(t, snapshot, 2)
	assert.Same(t, Session(s), snapshot["a"])

	// Mutating after a snapshot does not affect the copy.
	reg.Remove("a")
	assert.Equal(t, 1, reg.Len())
	assert.Len(t, snapshot, 2)
}

func TestBroadcastDeliversToAllSessions(t *testing.T) {
	reg := NewMemoryRegistry()
	first := &fakeSession{}
	second := &fakeSession{}
	reg.Put("a", first)
	reg.Put("b", second)

	hub := NewHub(reg)
	hub.Broadcast(context.Background(), Event{Type: EventObligationCreated, Message: "oi"})

	require.Len(t, first.sent, 1)
	require.Len(t, second.sent, 1)
	assert.Equal(t, 2, hub.ConnectedSessions())
}

func TestBroadcastDropsDeadSessions(t *testing.T) {
	reg := NewMemoryRegistry()
	alive := &fakeSession{}
	dead := &fakeSession{sendErr: errors.New("broken pipe")}
	reg.Put("alive", alive)
	reg.Put("dead", dead)

	hub := NewHub(reg)
	hub.Broadcast(context.Background(), Event{Type: EventObligationDueSoon})

	assert.Equal(t, 1, hub.ConnectedSessions())
	assert.True(t, dead.closed)
	assert.Len(t, alive.sent, 1)

	// The dead session stays gone on the next broadcast.
	hub.Broadcast(context.Background(), Event{Type: EventObligationDueSoon})
	assert.Len(t, alive.sent, 2)
}

func TestIdleSessionsReceiveKeepalivePings(t *testing.T) {
	reg := NewMemoryRegistry()
	hub := NewHub(reg)
	hub.pingPeriod = 20 * time.Millisecond

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	pings := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})

	// Control frames are only processed while reading.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pings:
	case <-time.After(2 * time.Second):
		t.Fatal("no keepalive ping received on an idle session")
	}
	assert.Equal(t, 1, hub.ConnectedSessions())
}
