package store

import (
	"fmt"

	"nightlies/internal/config"
)

// Open builds the backend named in cfg.
func Open(cfg config.StoreConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix)
	case config.BackendBadger:
		return NewBadgerStore(cfg.BadgerPath)
	case config.BackendBolt:
		return NewBoltStore(cfg.BoltPath)
	case config.BackendS3:
		return NewS3Store(S3Options{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Profile:  cfg.S3.Profile,
			Prefix:   cfg.S3.Prefix,
			Endpoint: cfg.S3.Endpoint,
		})
	case config.BackendHybrid:
		return NewHybridStore(cfg.RedisAddr, cfg.RedisPrefix, cfg.BadgerPath)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
