// Package collector defines the Collector interface and the status sources
// that feed the bar: media, volume, accessory battery, power, CPU load and
// clock.
package collector

import (
	"context"
	"errors"

	"github.com/Guliveer/barline/internal/models"
)

// ErrUnavailable reports that a source has nothing to show this cycle.
// It is never rendered; the registry turns it into an absent slot.
var ErrUnavailable = errors.New("source unavailable")

// Collector is the interface that all status sources must implement.
// Each collector produces at most one block per cycle.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect samples the source now. Any error means the block is absent
	// for this cycle. The context carries the cycle deadline.
	Collect(ctx context.Context) (models.Block, error)

	// IsAvailable reports whether the collector should be registered at all.
	IsAvailable() bool
}

// Primer is implemented by collectors that need a baseline sample before
// their first Collect can produce a value.
type Primer interface {
	Prime(ctx context.Context) error
}
