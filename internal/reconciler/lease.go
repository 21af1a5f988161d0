package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLeaseKey = "storeops:reconciler:lease"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a SET NX PX lock with a per-holder token.
type RedisLease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// RedisLeaseOption configures a RedisLease.
type RedisLeaseOption func(*RedisLease)

// WithLeaseKey overrides the Redis key.
func WithLeaseKey(key string) RedisLeaseOption {
	return func(l *RedisLease) {
		if key != "" {
			l.key = key
		}
	}
}

// NewRedisLease builds a lease held for at most ttl.
func NewRedisLease(client *redis.Client, ttl time.Duration, opts ...RedisLeaseOption) (*RedisLease, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("lease ttl must be positive")
	}
	l := &RedisLease{
		client: client,
		key:    defaultLeaseKey,
		token:  uuid.NewString(),
		ttl:    ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// Acquire reports whether this holder now owns the lease.
func (l *RedisLease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease: %w", err)
	}
	return ok, nil
}

// Release gives the lease up if this holder still owns it.
func (l *RedisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}
