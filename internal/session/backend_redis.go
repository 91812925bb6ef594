package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisBackend keeps session blobs in redis with a per-entry TTL so
// abandoned sessions expire on their own.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend builds a redis-backed session backend.
func NewRedisBackend(addr, password, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "bureau:session"
	}
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisBackend) key(clientID string, kind Kind) string {
	return r.prefix + ":" + clientID + ":" + string(kind)
}

// Get returns the stored value for client+kind.
func (r *RedisBackend) Get(ctx context.Context, clientID string, kind Kind) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	val, err := r.client.Get(ctx, r.key(clientID, kind)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores or replaces the value for client+kind, refreshing the TTL.
func (r *RedisBackend) Set(ctx context.Context, clientID string, kind Kind, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return r.client.Set(ctx, r.key(clientID, kind), value, r.ttl).Err()
}

// Delete removes the given kinds for a client.
func (r *RedisBackend) Delete(ctx context.Context, clientID string, kinds ...Kind) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	keys := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		keys = append(keys, r.key(clientID, kind))
	}
	err := r.client.Del(ctx, keys...).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
