package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLocker implements Locker with in-process state.
// Locks are NOT shared across process restarts or multiple instances.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]lease
	now   func() time.Time
}

type lease struct {
	token     string
	expiresAt time.Time
}

// NewMemoryLocker creates a new in-memory locker. Expired leases are dropped
// lazily on the next Acquire of the same key.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]lease),
		now:   time.Now,
	}
}

// Acquire takes the lock if it is free or expired.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.locks[key]; ok && now.Before(l.expiresAt) {
		return "", ErrNotAcquired
	}

	token := uuid.NewString()
	m.locks[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, nil
}

// Release frees the lock if token still owns it.
func (m *MemoryLocker) Release(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok || l.token != token || !m.now().Before(l.expiresAt) {
		return ErrNotOwned
	}
	delete(m.locks, key)
	return nil
}

var _ Locker = (*MemoryLocker)(nil)
