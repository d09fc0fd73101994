package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis SET NX with a TTL, so the dedup
// window is shared across apiserver instances.
type RedisStore struct {
	client *redis.Client
	window time.Duration
	prefix string
}

// NewRedisStore creates a redis-backed store and verifies the connection.
func NewRedisStore(addr, username, password string, db int, prefix string, window time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if prefix == "" {
		prefix = "audit:dedup:"
	}
	return &RedisStore{
		client: client,
		window: window,
		prefix: prefix,
	}, nil
}

// Seen marks the tuple with SET NX; a false reply means the key already
// existed, i.e. the tuple was seen within the window.
func (s *RedisStore) Seen(ctx context.Context, actorID, action, module string) (bool, error) {
	set, err := s.client.SetNX(ctx, s.prefix+key(actorID, action, module), "1", s.window).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
