package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in memory. It suits tests and single-process
// servers that only need snapshots to outlive a session restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*storedSession
	now      func() time.Time
	closed   bool
	done     chan struct{}
}

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStoreOption configures MemoryStore behavior.
type MemoryStoreOption func(*memoryStoreConfig)

type memoryStoreConfig struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithCleanupInterval sets how often expired snapshots are dropped.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.cleanupInterval = d
	}
}

// WithClock sets the clock expiry is measured against.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.now = now
	}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	cfg := &memoryStoreConfig{
		cleanupInterval: time.Minute,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := &MemoryStore{
		sessions: make(map[string]*storedSession),
		now:      cfg.now,
		done:     make(chan struct{}),
	}

	go store.cleanupLoop(cfg.cleanupInterval)
	return store
}

// Save stores a copy of data.
func (m *MemoryStore) Save(ctx context.Context, name string, data []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}
	m.sessions[name] = &storedSession{
		data:      append([]byte(nil), data...),
		expiresAt: expiresAt,
	}
	return nil
}

// Load returns a copy of the snapshot saved under name.
func (m *MemoryStore) Load(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed{}
	}
	s, ok := m.sessions[name]
	if !ok || m.now().After(s.expiresAt) {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Delete removes a snapshot.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}
	delete(m.sessions, name)
	return nil
}

// Touch updates the expiry of a snapshot.
func (m *MemoryStore) Touch(ctx context.Context, name string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}
	if s, ok := m.sessions[name]; ok {
		s.expiresAt = expiresAt
	}
	return nil
}

// Close stops the cleanup loop and drops every snapshot.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	m.sessions = nil
	return nil
}

// Count returns the number of stored snapshots, expired ones included.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup removes expired snapshots.
func (m *MemoryStore) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	now := m.now()
	for name, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, name)
		}
	}
}
