package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// ErrLockNotHeld is returned by Unlock when the lock expired or was taken
// over by another owner.
var ErrLockNotHeld = errors.New(errors.ErrCodeConflict, "lock not held by this owner")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Lock is a single-owner lease. The worker takes one per uploaded object so
// a redelivered request is not analyzed twice concurrently.
type Lock struct {
	client *Client
	key    string
	value  string
	logger logging.Logger
}

// Locker creates leases under a key prefix.
type Locker struct {
	client *Client
	prefix string
	logger logging.Logger
}

func NewLocker(client *Client, prefix string, log logging.Logger) *Locker {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Locker{client: client, prefix: prefix + "lock:", logger: log}
}

// TryLock acquires name for ttl. It reports false, without error, when
// another owner holds it.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (*Lock, bool, error) {
	lock := &Lock{
		client: l.client,
		key:    l.prefix + name,
		value:  uuid.NewString(),
		logger: l.logger,
	}
	ok, err := l.client.SetNX(ctx, lock.key, lock.value, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock").WithDetail("key=" + lock.key)
	}
	if !ok {
		return nil, false, nil
	}
	return lock, true, nil
}

// Unlock releases the lease if this owner still holds it.
func (lk *Lock) Unlock(ctx context.Context) error {
	if lk.client.isClosed() {
		return ErrClientClosed
	}
	n, err := unlockScript.Run(ctx, lk.client.rdb, []string{lk.key}, lk.value).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock").WithDetail("key=" + lk.key)
	}
	if n == 0 {
		lk.logger.Warn("Lock expired before release", logging.String("key", lk.key))
		return ErrLockNotHeld
	}
	return nil
}

// Key returns the Redis key of the lease.
func (lk *Lock) Key() string { return lk.key }

//Personal.AI order the ending
