package main

import (
	"fmt"
	"os"

	"nightlies/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nightlies",
		Short:         "nightlies - serve nightly build artifacts from a key-value store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			l, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Store.Backend, "backend", cfg.Store.Backend, "Store backend: memory, redis, badger, bolt, s3, hybrid")
	flags.StringVar(&cfg.Store.RedisAddr, "redis", cfg.Store.RedisAddr, "Address of Redis server")
	flags.StringVar(&cfg.Store.RedisPrefix, "redis-prefix", cfg.Store.RedisPrefix, "Key prefix inside Redis")
	flags.StringVar(&cfg.Store.BadgerPath, "badger", cfg.Store.BadgerPath, "Path to BadgerDB data directory (empty for in-memory)")
	flags.StringVar(&cfg.Store.BoltPath, "bolt", cfg.Store.BoltPath, "Path to Bolt database file")
	flags.StringVar(&cfg.Store.S3.Bucket, "s3-bucket", cfg.Store.S3.Bucket, "S3 bucket holding the artifacts")
	flags.StringVar(&cfg.Store.S3.Region, "s3-region", cfg.Store.S3.Region, "S3 region")
	flags.StringVar(&cfg.Store.S3.Profile, "s3-profile", cfg.Store.S3.Profile, "Shared credentials profile for S3")
	flags.StringVar(&cfg.Store.S3.Prefix, "s3-prefix", cfg.Store.S3.Prefix, "Key prefix inside the S3 bucket")
	flags.StringVar(&cfg.Store.S3.Endpoint, "s3-endpoint", cfg.Store.S3.Endpoint, "Custom S3-compatible endpoint")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	flags.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format: console or json")

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newPublishCmd(cfg))
	rootCmd.AddCommand(newGetCmd(cfg))
	return rootCmd
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func main() {
	cfg := config.Default()
	if err := newRootCmd(&cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
