// internal/store/memory.go
//
// In-memory registry of live sessions for the HTTP surface.
//
// Characteristics:
//   - Stores *session.Session values keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; nothing is persisted.
//   - Sessions idle longer than the TTL are dropped by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

// ErrNotFound is returned by Get for unknown or expired IDs.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for live sessions.
type Store interface {
	// Save adds or replaces a session under its ID.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID and marks it as recently used.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete forgets a session.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions idle since before cutoff and returns how many went.
	Sweep(ctx context.Context, cutoff time.Time) int
}

type entry struct {
	s        *session.Session
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions
	sessions map[string]*entry // keyed by Session.ID()
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = &entry{s: s, lastSeen: m.now()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e.s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep never drops a session with a call in flight.
func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) && !e.s.Busy() {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
