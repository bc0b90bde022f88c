// Package scheduler implements the tick-based cycle driver. Each cycle runs
// every registered collector concurrently, renders the blocks into one line
// and hands it to a publisher. The scheduler does not know how the line is
// shown; that belongs to the publisher.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/barline/internal/collector"
	"github.com/Guliveer/barline/internal/models"
	"github.com/Guliveer/barline/internal/publisher"
)

// Scheduler drives periodic status cycles.
type Scheduler struct {
	registry  *collector.Registry
	publisher publisher.Publisher
	interval  time.Duration
	warmup    time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. interval is both the cycle period and the
// deadline every cycle's sources share. warmup is the pause between priming
// the sources and the first cycle.
func New(registry *collector.Registry, pub publisher.Publisher, interval, warmup time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		registry:  registry,
		publisher: pub,
		interval:  interval,
		warmup:    warmup,
		logger:    logger.Named("scheduler"),
	}
}

// Start primes the sources, runs a first cycle right after the warmup, and
// then one cycle per interval. It blocks until the context is cancelled.
// A failed publish is logged and the loop carries on.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", s.interval)
	}
	if s.prepare(ctx) != nil {
		// Cancelled during the warmup.
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// RunOnce primes the sources, waits for the warmup, runs a single cycle and
// returns the publish error, if any.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.prepare(ctx); err != nil {
		return err
	}
	return s.cycle(ctx)
}

// prepare gives stateful sources their baseline and waits out the warmup.
// It only fails when ctx is cancelled during the wait.
func (s *Scheduler) prepare(ctx context.Context) error {
	s.registry.Prime(ctx)
	if s.warmup <= 0 {
		return nil
	}

	timer := time.NewTimer(s.warmup)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if err := s.cycle(ctx); err != nil {
		s.logger.Error("Failed to publish status", zap.Error(err))
	}
}

// cycle collects every source within one interval, renders the line in
// registration order, and publishes it.
func (s *Scheduler) cycle(ctx context.Context) error {
	collectCtx := ctx
	if s.interval > 0 {
		var cancel context.CancelFunc
		collectCtx, cancel = context.WithTimeout(ctx, s.interval)
		defer cancel()
	}

	start := time.Now()
	blocks := s.registry.CollectAll(collectCtx)
	line := models.Line(blocks)

	s.logger.Debug("Collected status",
		zap.Int("present", countPresent(blocks)),
		zap.Int("sources", len(blocks)),
		zap.Duration("took", time.Since(start)))

	return s.publisher.Publish(ctx, line)
}

func countPresent(blocks []*models.Block) int {
	n := 0
	for _, b := range blocks {
		if b != nil {
			n++
		}
	}
	return n
}
