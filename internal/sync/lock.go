package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/pkg/errors"
)

// locker is the slice of the redis client the vendor lock needs.
type locker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(scope string) string
}

// VendorLock serializes sync runs per vendor with a redis advisory lock, so
// two concurrent triggers cannot interleave the diff-then-write sequence and
// double-insert vehicles.
type VendorLock struct {
	redis locker
	ttl   time.Duration
}

// NewVendorLock builds the lock helper. The TTL bounds how long a crashed run
// can keep a vendor blocked.
func NewVendorLock(redis locker, ttl time.Duration) *VendorLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &VendorLock{
		redis: redis,
		ttl:   ttl,
	}
}

// Acquire takes the vendor's sync lock and returns the owner token minted for
// this acquisition. Each run gets its own token, so a run whose lock TTL
// expired mid-flight cannot release a successor's lock. Returns
// CodeSyncRunning when another run already holds it.
func (l *VendorLock) Acquire(ctx context.Context, vendorID string) (string, error) {
	key := l.redis.LockKey("vendor-sync:" + vendorID)
	owner := uuid.NewString()
	acquired, err := l.redis.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "acquiring vendor sync lock")
	}
	if !acquired {
		return "", errors.New(errors.CodeSyncRunning, "a sync for this vendor is already running")
	}
	return owner, nil
}

// Release frees the vendor's sync lock if the given acquisition still owns
// it. A lock that expired or was taken over by another run is left alone.
func (l *VendorLock) Release(ctx context.Context, vendorID, owner string) {
	key := l.redis.LockKey("vendor-sync:" + vendorID)
	holder, err := l.redis.Get(ctx, key)
	if err != nil || holder != owner {
		return
	}
	_ = l.redis.Del(ctx, key)
}
