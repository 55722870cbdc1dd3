package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// Mutex is a single-holder distributed lock.  The reconciliation engine takes
// one per subject so concurrent pipeline runs cannot double-insert the same
// affair between duplicate check and create.
type Mutex interface {
	Lock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// LockFactory builds named mutexes over the shared client.
type LockFactory interface {
	NewMutex(name string, opts ...LockOption) Mutex
}

// LockOption customizes a mutex.
type LockOption func(*lockConfig)

// WithLockTTL caps how long the lock is held before expiring on its own.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = ttl }
}

// WithRetryDelay sets the wait between acquisition attempts.
func WithRetryDelay(delay time.Duration) LockOption {
	return func(c *lockConfig) { c.retryDelay = delay }
}

// WithRetryCount bounds the number of acquisition attempts.
func WithRetryCount(count int) LockOption {
	return func(c *lockConfig) { c.retryCount = count }
}

type lockConfig struct {
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
}

type lockFactory struct {
	client *Client
	logger logging.Logger
}

// NewLockFactory returns the Redis-backed lock factory.
func NewLockFactory(client *Client, log logging.Logger) LockFactory {
	return &lockFactory{client: client, logger: log}
}

func (f *lockFactory) NewMutex(name string, opts ...LockOption) Mutex {
	cfg := lockConfig{
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		retryCount: 30,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &mutex{
		client: f.client,
		key:    f.client.KeyPrefix() + "lock:" + name,
		value:  uuid.New().String(),
		config: cfg,
		logger: f.logger,
	}
}

type mutex struct {
	client *Client
	key    string
	value  string
	config lockConfig
	logger logging.Logger
}

// unlockScript releases the lock only when this owner still holds it, so an
// expired-and-reacquired lock is never deleted from under another holder.
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

func (m *mutex) Lock(ctx context.Context) error {
	for i := 0; i < m.config.retryCount; i++ {
		ok, err := m.client.Raw().SetNX(ctx, m.key, m.value, m.config.ttl).Result()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.retryDelay):
		}
	}
	return ErrLockNotAcquired
}

func (m *mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.client.Raw().SetNX(ctx, m.key, m.value, m.config.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	return ok, nil
}

func (m *mutex) Unlock(ctx context.Context) error {
	res, err := unlockScript.Run(ctx, m.client.Raw(), []string{m.key}, m.value).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if res.(int64) == 0 {
		return ErrLockNotHeld
	}
	return nil
}
