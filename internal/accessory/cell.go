package accessory

import (
	"sync/atomic"

	"github.com/Guliveer/barline/internal/models"
)

// Cell is a single-slot latest-value holder. Store overwrites, Load returns
// the most recent value or reports absence. Neither call blocks the other.
type Cell struct {
	v atomic.Pointer[models.Block]
}

// Store publishes b. A nil b publishes absence.
func (c *Cell) Store(b *models.Block) {
	c.v.Store(b)
}

// Load returns the latest published block.
func (c *Cell) Load() (models.Block, bool) {
	b := c.v.Load()
	if b == nil {
		return models.Block{}, false
	}
	return *b, true
}
