package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"nightlies/internal/config"
	"nightlies/internal/server"
	"nightlies/internal/store"
	"nightlies/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the artifact web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Setup Signal Handling (Ctrl+C)
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case <-sigChan:
					logger.Info("Shutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			return serve(ctx, *cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	cmd.Flags().StringVar(&cfg.Server.MetricsAddr, "metrics-addr", cfg.Server.MetricsAddr, "Prometheus listen address (disabled when empty)")
	cmd.Flags().DurationVar(&cfg.Server.GCInterval, "gc-interval", cfg.Server.GCInterval, "Badger value log GC interval (0 disables)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("Store opened", zap.String("backend", cfg.Store.Backend))

	// Background goroutines stop, and are waited for, before the store closes.
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c, ok := gcCollector(st, cfg); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.NewGCWorker(c, cfg.Server.GCInterval, logger).Start(ctx)
		}()
	}

	if cfg.Server.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveMetrics(ctx, cfg.Server.MetricsAddr, logger)
		}()
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	srv := server.NewServer(st, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	<-errCh
	logger.Info("Goodbye!")
	return nil
}

// gcCollector returns the store's Badger value log when it lives on disk.
// In-memory Badger has no value log to compact.
func gcCollector(st store.Backend, cfg config.Config) (worker.Collector, bool) {
	if cfg.Server.GCInterval <= 0 || cfg.Store.BadgerPath == "" {
		return nil, false
	}
	c, ok := st.(worker.Collector)
	return c, ok
}

// serveMetrics runs the Prometheus endpoint on its own listener so the public
// surface stays limited to the artifact routes.
func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	ms := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ms.Close()
	}()

	logger.Info("Metrics listening", zap.String("addr", addr))
	if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", zap.Error(err))
	}
}
