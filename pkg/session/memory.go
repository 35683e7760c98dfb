package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Gallery state holds live
// layout engines, so sessions are not shared between server instances.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates a store whose sessions idle out after ttl
// (DefaultTTL when ttl <= 0).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, sessions: make(map[string]*Session), now: time.Now}
}

// TTL returns the idle timeout.
func (m *MemoryStore) TTL() time.Duration { return m.ttl }

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if s.IsExpired(now) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, ErrExpired
	}
	s.touch(now, m.ttl)
	return s, nil
}

func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	s.touch(m.now(), m.ttl)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Cleanup(ctx context.Context) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = m.Cleanup(ctx)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
