package config

import (
	"errors"
	"fmt"
	"time"
)

// Supported store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendBolt   = "bolt"
	BackendS3     = "s3"
	BackendHybrid = "hybrid"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Log    LogConfig
}

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	Addr        string
	MetricsAddr string
	GCInterval  time.Duration
}

// StoreConfig selects and configures the key-value backend
type StoreConfig struct {
	Backend     string
	RedisAddr   string
	RedisPrefix string
	BadgerPath  string
	BoltPath    string
	S3          S3Config
}

type S3Config struct {
	Bucket   string
	Region   string
	Profile  string
	Prefix   string
	Endpoint string
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":3000",
			GCInterval: 5 * time.Minute,
		},
		Store: StoreConfig{
			Backend:     BackendBadger,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "nightly:",
			BadgerPath:  "./badger-data",
			BoltPath:    "./nightlies.db",
			S3:          S3Config{Region: "us-east-1"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func (c StoreConfig) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis backend requires --redis")
		}
	case BackendBadger:
	case BackendBolt:
		if c.BoltPath == "" {
			return errors.New("bolt backend requires --bolt")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return errors.New("s3 backend requires --s3-bucket")
		}
	case BackendHybrid:
		if c.RedisAddr == "" {
			return errors.New("hybrid backend requires --redis")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
