// Clock collector: wall clock formatted with a strftime layout.
package collector

import (
	"context"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/Guliveer/barline/internal/models"
)

const (
	// DefaultClockFormat renders e.g. "October/15 09:41 PM".
	DefaultClockFormat = "%B/%d %I:%M %p"

	clockIcon = "\uf017"
)

// ClockCollector formats the current local time.
type ClockCollector struct {
	format string
	now    func() time.Time
	style  models.Style
}

// NewClockCollector creates a clock collector. An empty format falls back to
// DefaultClockFormat; a nil now uses time.Now.
func NewClockCollector(format string, now func() time.Time) *ClockCollector {
	if format == "" {
		format = DefaultClockFormat
	}
	if now == nil {
		now = time.Now
	}
	return &ClockCollector{
		format: format,
		now:    now,
		style:  models.TextStyle(models.DefaultForeground, ""),
	}
}

// Name returns the collector identifier.
func (c *ClockCollector) Name() string { return "clock" }

// IsAvailable returns true.
func (c *ClockCollector) IsAvailable() bool { return true }

// Collect never fails.
func (c *ClockCollector) Collect(_ context.Context) (models.Block, error) {
	return models.NewBlock(clockIcon, strftime.Format(c.format, c.now()), c.style), nil
}
