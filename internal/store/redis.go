package store

import (
	"context"
	"errors"
	"fmt"

	"nightlies/internal/model"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces artifact keys inside a shared Redis.
const DefaultRedisPrefix = "nightly:"

// RedisStore reads artifacts from Redis string keys.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects and pings Redis at addr.
func NewRedisStore(addr, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string, kind model.Kind) (*Value, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return valueOf(data, kind), nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
