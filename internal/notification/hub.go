package notification

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second

	// pingPeriod must stay below pongTimeout: a quiet client only pongs in
	// reply to our pings, and the pong is what extends its read deadline.
	pingPeriod = 54 * time.Second
)

// Hub broadcasts events to websocket sessions held in an injected registry.
type Hub struct {
	registry   Registry
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

// NewHub creates a websocket hub over the given session registry.
func NewHub(registry Registry) *Hub {
	return &Hub{
		registry:   registry,
		pingPeriod: pingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client is served from the same origin; cross-origin
			// subscribers are read-only consumers of broadcast data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

var _ Broadcaster = (*Hub)(nil)

// Broadcast sends the event to every connected session. Dead sessions are
// dropped from the registry.
func (h *Hub) Broadcast(ctx context.Context, event Event) {
	sessions := h.registry.Snapshot()
	if len(sessions) == 0 {
		return
	}

	for id, session := range sessions {
		if err := session.Send(event); err != nil {
			slog.WarnContext(ctx, "dropping dead notification session", "session_id", id, "error", err)
			h.registry.Remove(id)
			_ = session.Close()
		}
	}
}

// ConnectedSessions returns the number of sessions currently registered.
func (h *Hub) ConnectedSessions() int {
	return h.registry.Len()
}

// ServeHTTP upgrades the request to a websocket connection and registers it
// as a session until the peer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	session := newWSSession(conn)
	h.registry.Put(id, session)
	slog.InfoContext(r.Context(), "notification session connected", "session_id", id)

	// Keepalive loop: idle dashboards would otherwise hit the read deadline
	// between events and get dropped. Ping failure means the connection is
	// closing; the reader loop handles the cleanup.
	go func() {
		ticker := time.NewTicker(h.pingPeriod)
		defer ticker.Stop()
		for range ticker.C {
			if err := session.Ping(); err != nil {
				return
			}
		}
	}()

	// Reader loop: the hub never expects client messages, but reading is
	// required to process control frames and detect disconnects.
	go func() {
		defer func() {
			h.registry.Remove(id)
			_ = session.Close()
			slog.Info("notification session disconnected", "session_id", id)
		}()

		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongTimeout))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// wsSession wraps a websocket connection with a write mutex: gorilla
// connections allow only one concurrent writer.
type wsSession struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSession(conn *websocket.Conn) *wsSession {
	return &wsSession{conn: conn}
}

func (s *wsSession) Send(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

// Ping writes a ping control frame. The peer's pong reply extends the read
// deadline in the hub's reader loop.
func (s *wsSession) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}
