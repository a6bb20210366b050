package notification

import "sync"

// Session is one connected notification consumer.
type Session interface {
	// Send delivers a single event. Implementations must be safe for
	// concurrent use; a returned error marks the session as dead.
	Send(event Event) error

	// Close releases the underlying connection.
	Close() error
}

// Registry tracks connected sessions keyed by session ID. It is injected
// into the hub rather than held as process-wide state so that alternative
// backends (e.g. a shared session store) can replace it.
type Registry interface {
	Put(id string, s Session)
	Remove(id string)
	Snapshot() map[string]Session
	Len() int
}

// MemoryRegistry is the in-process Registry implementation.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryRegistry creates an empty in-memory session registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]Session)}
}

func (r *MemoryRegistry) Put(id string, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
}

func (r *MemoryRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Snapshot returns a copy of the current sessions so broadcasting does not
// hold the lock while writing to connections.
func (r *MemoryRegistry) Snapshot() map[string]Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Session, len(r.sessions))
	for id, s := range r.sessions {
		out[id] = s
	}
	return out
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
