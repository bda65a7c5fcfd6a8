package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a single Redis node with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
}

// NewRedisLocker creates a locker on client.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire takes the lock with SET key token NX PX ttl.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis lock acquire: %w", err)
	}
	if !ok {
		return "", ErrNotAcquired
	}
	return token, nil
}

// Release deletes the lock atomically if token still owns it.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("redis lock release: %w", err)
	}
	if n == 0 {
		return ErrNotOwned
	}
	return nil
}

var _ Locker = (*RedisLocker)(nil)
