// Accessory battery collector: reads the background poller's latest value.
package collector

import (
	"context"

	"github.com/Guliveer/barline/internal/models"
)

// LatestReader exposes the most recent sample of a background poller.
type LatestReader interface {
	Latest() (models.Block, bool)
}

// AccessoryCollector never touches the bus; it only reads what the poller
// last published, so it never waits on a slow device.
type AccessoryCollector struct {
	latest LatestReader
}

// NewAccessoryCollector wraps a poller. A nil reader leaves the collector
// unavailable, which keeps it out of the registry.
func NewAccessoryCollector(latest LatestReader) *AccessoryCollector {
	return &AccessoryCollector{latest: latest}
}

// Name returns the collector identifier.
func (c *AccessoryCollector) Name() string { return "accessory" }

// IsAvailable reports whether a poller is wired.
func (c *AccessoryCollector) IsAvailable() bool { return c.latest != nil }

// Collect returns the poller's latest block, or ErrUnavailable when it has
// not published one.
func (c *AccessoryCollector) Collect(_ context.Context) (models.Block, error) {
	block, ok := c.latest.Latest()
	if !ok {
		return models.Block{}, ErrUnavailable
	}
	return block, nil
}
