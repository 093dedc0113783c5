package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExclusive(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	lease, err := l.Acquire(ctx, "project-1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "project-1", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	// other keys are independent
	other, err := l.Acquire(ctx, "project-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))

	again, err := l.Acquire(ctx, "project-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestMemoryLockerExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	now := time.Now()
	l.now = func() time.Time { return now }

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)

	fresh, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	// the expired holder must not free the new holder's lock
	require.NoError(t, stale.Release(ctx))

	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, fresh.Release(ctx))
}

func TestMemoryLockerConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := l.Acquire(ctx, "shared", time.Minute); err == nil {
				winners.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
