package locks

import (
	"context"
	"errors"
	"time"
)

// returned by Acquire when another holder owns the key
var ErrLocked = errors.New("lock is held")

// mutual exclusion keyed by name, with expiry so a crashed holder cannot
// block the key forever
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// a held lock; Release only frees it if it is still ours
type Lease interface {
	Release(ctx context.Context) error
}
