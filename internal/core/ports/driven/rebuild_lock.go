package driven

import (
	"context"
	"time"
)

// RebuildLock serialises index rebuilds against each other and against
// queries on the same storage location. The indexer builds a fresh index and
// swaps it in while holding the lock; queries against the previous index are
// unaffected because the swap is atomic.
type RebuildLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns true if the lock was successfully acquired, false if already
	// held by another instance. The lock auto-expires after TTL.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock.
	// Safe to call even if the lock is not held or has expired.
	Release(ctx context.Context, name string) error

	// Extend extends the TTL of a currently held lock.
	// Returns an error if the lock is not held by this instance.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
