package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps session-scoped items in Redis under "<prefix><key>".
// Every write refreshes the item's TTL so abandoned sessions age out on their own.
type RedisStorage struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// NewRedisStorage returns a storage view for one session namespace.
func NewRedisStorage(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{Client: client, Prefix: "console:session:" + namespace + ":", TTL: ttl}
}

// OpenRedis connects to addr and verifies the connection with PING.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// GetItem returns the stored value and whether it exists.
func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.Get(ctx, s.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetItem stores value with the configured TTL.
func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	return s.Client.Set(ctx, s.Prefix+key, value, s.TTL).Err()
}

// RemoveItem deletes key. Missing keys are not an error.
func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return s.Client.Del(ctx, s.Prefix+key).Err()
}

// Clear deletes every key under the namespace prefix.
func (s *RedisStorage) Clear(ctx context.Context) error {
	var keys []string
	iter := s.Client.Scan(ctx, 0, s.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.Client.Del(ctx, keys...).Err()
}
