// Package lock provides distributed and local locking abstractions.
// For single-node deployments, memory-based locks are used.
// For distributed deployments, Redis-based locks are used.
package lock

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotAcquired indicates the lock is held by someone else.
	ErrNotAcquired = errors.New("lock not acquired")

	// ErrNotOwned indicates a release with a token that no longer owns the lock.
	ErrNotOwned = errors.New("lock not owned")
)

// Locker hands out expiring, token-owned locks. Only the holder of the token
// returned by Acquire can release the lock.
type Locker interface {
	// Acquire takes the lock for ttl and returns its ownership token.
	// Returns ErrNotAcquired if the lock is currently held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Release frees the lock if token still owns it.
	// Returns ErrNotOwned if the lock expired or was taken over.
	Release(ctx context.Context, key, token string) error
}

// WithLock runs fn while holding key. Release errors after fn succeeded are
// reported; ErrNotOwned is not, since the lock already expired.
func WithLock(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	token, err := locker.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}

	fnErr := fn(ctx)

	// Release even if ctx was cancelled during fn.
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	relErr := locker.Release(releaseCtx, key, token)

	if fnErr != nil {
		return fnErr
	}
	if relErr != nil && !errors.Is(relErr, ErrNotOwned) {
		return relErr
	}
	return nil
}

// =============================================================================
// Common Lock Keys
// =============================================================================

// Keys provides lock key generation for common scenarios.
var Keys = lockKeys{}

type lockKeys struct{}

// Registration serializes sign-ups claiming the same username.
func (lockKeys) Registration(username string) string {
	return "lock:register:" + strings.ToLower(username)
}

// Publish serializes publishing the same uploaded video.
func (lockKeys) Publish(videoKey string) string {
	return "lock:publish:" + videoKey
}
