package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises event handling for one session across bot replicas,
// e.g. when several webhook instances share a Redis session backend.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl even if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
