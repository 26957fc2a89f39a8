package lease

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLease implements Lease on a shared redis instance, fencing
// reconciliation attempts across processes.
type RedisLease struct {
	client *redis.Client
}

// NewRedisLease constructs a redis-backed lease registry.
func NewRedisLease(addr string) *RedisLease {
	return &RedisLease{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Acquire claims key via SET NX with a TTL.
func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, 1, ttl).Result()
}

// Release deletes the key.
func (l *RedisLease) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (l *RedisLease) Close() error {
	return l.client.Close()
}
