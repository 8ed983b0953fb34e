package store

import (
	"context"
	"fmt"

	"nightlies/internal/model"
)

// HybridStore combines Redis (the small CURRENT pointer) and Badger (heavy artifacts).
type HybridStore struct {
	pointer *RedisStore
	assets  *BadgerStore
}

// NewHybridStore initializes both databases.
func NewHybridStore(redisAddr, redisPrefix, badgerPath string) (*HybridStore, error) {
	rs, err := NewRedisStore(redisAddr, redisPrefix)
	if err != nil {
		return nil, err
	}
	bs, err := NewBadgerStore(badgerPath)
	if err != nil {
		rs.Close()
		return nil, err
	}
	return &HybridStore{pointer: rs, assets: bs}, nil
}

func (s *HybridStore) backendFor(key string) Backend {
	if key == model.CurrentKey {
		return s.pointer
	}
	return s.assets
}

func (s *HybridStore) Get(ctx context.Context, key string, kind model.Kind) (*Value, error) {
	return s.backendFor(key).Get(ctx, key, kind)
}

func (s *HybridStore) Put(ctx context.Context, key string, value []byte) error {
	return s.backendFor(key).Put(ctx, key, value)
}

// RunValueLogGC compacts the artifact side.
func (s *HybridStore) RunValueLogGC(discardRatio float64) error {
	return s.assets.RunValueLogGC(discardRatio)
}

// Close cleans up connections
func (s *HybridStore) Close() error {
	perr := s.pointer.Close()
	aerr := s.assets.Close()
	if perr != nil {
		return fmt.Errorf("close redis: %w", perr)
	}
	if aerr != nil {
		return fmt.Errorf("close badger: %w", aerr)
	}
	return nil
}
