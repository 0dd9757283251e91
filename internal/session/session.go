// Package session holds the transient per-conversation state the
// gatekeeper consults on every message. Sessions are not the source of
// truth for registration (the USERS table is); they only gate the
// current process run and disappear on restart or eviction.
package session

import (
	"sync"
	"time"
)

// State is one conversation's record: how many invitation attempts the
// user has made and whether the echo feature is still locked.
type State struct {
	Attempts int
	Blocked  bool
	LastSeen time.Time
}

// Store is the session backend. Get reports ok=false when the user has
// no session this run.
type Store interface {
	Get(userID int64) (State, bool, error)
	Put(userID int64, state State) error
	Delete(userID int64) error
}

// MemoryStore keeps sessions in a map guarded by a RWMutex. It is the
// default backend when no Redis is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]State)}
}

func (m *MemoryStore) Get(userID int64) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[userID]
	return st, ok, nil
}

func (m *MemoryStore) Put(userID int64, state State) error {
	state.LastSeen = time.Now()
	m.mu.Lock()
	m.sessions[userID] = state
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// EvictIdle drops sessions whose last activity is older than ttl and
// returns how many were removed.
func (m *MemoryStore) EvictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, st := range m.sessions {
		if st.LastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}
