package collector

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Guliveer/barline/internal/models"
)

// Registry holds the collectors in bar order and runs them concurrently.
// Registration order is output order.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// Register appends a collector if it's available.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Info("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Info("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// Prime gives every collector that implements Primer its baseline sample.
// Failures are logged; the collector simply stays absent until it recovers.
func (r *Registry) Prime(ctx context.Context) {
	for _, c := range r.collectors {
		p, ok := c.(Primer)
		if !ok {
			continue
		}
		if err := p.Prime(ctx); err != nil {
			r.logger.Warn("Priming failed",
				zap.String("collector", c.Name()),
				zap.Error(err))
		}
	}
}

// CollectAll runs all registered collectors concurrently and returns one
// slot per collector, in registration order. Absent sources leave a nil slot.
// A failing collector never affects the others.
func (r *Registry) CollectAll(ctx context.Context) []*models.Block {
	results := make([]*models.Block, len(r.collectors))

	var g errgroup.Group
	for i, c := range r.collectors {
		i, c := i, c
		g.Go(func() error {
			block, err := c.Collect(ctx)
			if err != nil {
				r.logFailure(c.Name(), err)
				return nil
			}
			results[i] = &block
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Registry) logFailure(name string, err error) {
	if errors.Is(err, ErrUnavailable) {
		r.logger.Debug("Source absent", zap.String("collector", name))
		return
	}
	r.logger.Debug("Collection failed",
		zap.String("collector", name),
		zap.Error(err))
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
