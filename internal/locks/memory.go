package locks

import (
	"context"
	"sync"
	"time"
)

// implements Locker in process, for single-instance deployments and tests
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*memoryLock
	now   func() time.Time
}

type memoryLock struct {
	lease     *memoryLease
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]*memoryLock),
		now:   time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if held, ok := l.locks[key]; ok && now.Before(held.expiresAt) {
		return nil, ErrLocked
	}

	lease := &memoryLease{locker: l, key: key}
	l.locks[key] = &memoryLock{lease: lease, expiresAt: now.Add(ttl)}

	return lease, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
}

func (m *memoryLease) Release(context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()

	if held, ok := m.locker.locks[m.key]; ok && held.lease == m {
		delete(m.locker.locks, m.key)
	}

	return nil
}
