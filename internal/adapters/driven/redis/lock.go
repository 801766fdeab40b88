package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.RebuildLock = (*Lock)(nil)

const lockKeyPrefix = "scanwise:lock:"

// ErrNotHolder is returned when extending a lock this instance does not hold.
var ErrNotHolder = errors.New("lock not held by this instance")

// Lock serialises index rebuilds across API and worker processes using Redis
// SET NX with a TTL. The value stored under the lock key is a per-instance
// holder token, so release and extend only act on locks this process took.
type Lock struct {
	client *redis.Client
	holder string
}

// NewLock creates a Redis-backed rebuild lock with a fresh holder token.
func NewLock(client *redis.Client) *Lock {
	hostname, _ := os.Hostname()
	return &Lock{
		client: client,
		holder: fmt.Sprintf("%s:%s", hostname, domain.GenerateID()),
	}
}

// Acquire takes a named lock for ttl. Returns false without error when the
// lock is already held, by this instance or any other. The TTL bounds how
// long a crashed rebuild can block the next one.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	taken, err := l.client.SetNX(ctx, lockKeyPrefix+name, l.holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return taken, nil
}

// Delete-if-holder and expire-if-holder must each check and act atomically,
// otherwise a lock that expired and was re-taken by another instance could
// be released or extended out from under it.
var (
	releaseScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`)

	extendScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// Release drops a named lock if this instance holds it. A release of an
// expired or foreign lock is a no-op, not an error.
func (l *Lock) Release(ctx context.Context, name string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{lockKeyPrefix + name}, l.holder).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Extend pushes out the TTL of a lock this instance holds. Long reindex runs
// call this to keep the lock from expiring mid-rebuild.
func (l *Lock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	res, err := extendScript.Run(ctx, l.client, []string{lockKeyPrefix + name}, l.holder, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if res.(int64) == 0 {
		return fmt.Errorf("extend lock %s: %w", name, ErrNotHolder)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
