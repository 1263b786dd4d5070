// Package coordination provides a Redis run lock so that at most one process
// executes a scraping cycle at a time.
package coordination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// DefaultLockTTL bounds how long a crashed holder can block other processes.
const DefaultLockTTL = 2 * time.Hour

var (
	// ErrLockNotAcquired is returned when another holder owns the lock.
	ErrLockNotAcquired = errors.New("lock not acquired")

	// ErrLockNotHeld is returned when releasing or extending a lease that expired
	// or was taken over.
	ErrLockNotHeld = errors.New("lock not held")
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// RunLock is a named Redis lock. Each acquisition gets its own token.
type RunLock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	log    logger.Logger
}

// NewRunLock creates a lock on key.
func NewRunLock(client redis.UniversalClient, key string, ttl time.Duration, log logger.Logger) *RunLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RunLock{
		client: client,
		key:    key,
		ttl:    ttl,
		log:    logger.Component(log, "coordination").With(logger.String("lock", key)),
	}
}

// Key returns the lock key.
func (l *RunLock) Key() string {
	return l.key
}

// Lease is a held lock.
type Lease struct {
	lock  *RunLock
	token string
}

// Token returns the value stored under the lock key while the lease is held.
func (le *Lease) Token() string {
	return le.token
}

// TryAcquire takes the lock without waiting.
func (l *RunLock) TryAcquire(ctx context.Context) (*Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &Lease{lock: l, token: token}, nil
}

// Release frees the lock if this lease still holds it.
func (le *Lease) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, le.lock.client, []string{le.lock.key}, le.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the lease TTL to d.
func (le *Lease) Extend(ctx context.Context, d time.Duration) error {
	result, err := extendScript.Run(ctx, le.lock.client, []string{le.lock.key}, le.token, d.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to extend lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Do runs fn while holding the lock and releases it afterwards.
func (l *RunLock) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	lease, err := l.TryAcquire(ctx)
	if err != nil {
		return err
	}
	l.log.Debug("Lock acquired", logger.String("token", lease.token))

	defer func() {
		// Release even when ctx was cancelled mid-run.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if releaseErr := lease.Release(releaseCtx); releaseErr != nil {
			l.log.Warn("Failed to release lock", logger.Error(releaseErr))
		}
	}()

	return fn(ctx)
}

// Holder returns the token of the current holder, or "" when the lock is free.
func (l *RunLock) Holder(ctx context.Context) (string, error) {
	val, err := l.client.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check lock: %w", err)
	}
	return val, nil
}
