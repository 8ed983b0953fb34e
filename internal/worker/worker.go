package worker

import (
	"context"
	"errors"
	"time"

	"nightlies/internal/metrics"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// DefaultDiscardRatio is the share of stale data a value log file needs before it is rewritten.
const DefaultDiscardRatio = 0.5

// Collector is anything with a Badger value log to compact.
// This allows us to drive the loop without a database in tests.
type Collector interface {
	RunValueLogGC(discardRatio float64) error
}

// GCWorker periodically reclaims space in the artifact database.
// Publishing overwrites large values, so the value log grows without it.
type GCWorker struct {
	collector Collector
	logger    *zap.Logger
	interval  time.Duration
	ratio     float64
}

func NewGCWorker(c Collector, interval time.Duration, logger *zap.Logger) *GCWorker {
	return &GCWorker{
		collector: c,
		logger:    logger,
		interval:  interval,
		ratio:     DefaultDiscardRatio,
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *GCWorker) Start(ctx context.Context) {
	w.logger.Info("GC worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("GC worker shutting down")
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

// runOnce keeps rewriting files until Badger reports nothing left to reclaim.
func (w *GCWorker) runOnce() {
	rewrites := 0
	for {
		err := w.collector.RunValueLogGC(w.ratio)
		if err == nil {
			rewrites++
			metrics.ValueLogGCRunsTotal.WithLabelValues("rewrote").Inc()
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) {
			metrics.ValueLogGCRunsTotal.WithLabelValues("noop").Inc()
			w.logger.Debug("Value log GC complete", zap.Int("rewrites", rewrites))
			return
		}
		metrics.ValueLogGCRunsTotal.WithLabelValues("error").Inc()
		w.logger.Warn("Value log GC failed", zap.Error(err))
		return
	}
}
