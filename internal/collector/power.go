// Power collector: battery charge and charging state from sysfs.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Guliveer/barline/internal/models"
)

const (
	// statusDischarging is the only sysfs status that selects the
	// discharging icon. Full, Unknown, Charging and anything else do not.
	statusDischarging = "Discharging"

	dischargingIcon = "\uf242"
	chargingIcon    = "\uf0e7"
)

// PowerCollector reads <dir>/capacity and <dir>/status of one power supply,
// e.g. /sys/class/power_supply/BAT0.
type PowerCollector struct {
	dir   string
	style models.Style
}

// NewPowerCollector creates a power collector for the supply directory dir.
func NewPowerCollector(dir string) *PowerCollector {
	return &PowerCollector{
		dir:   dir,
		style: models.TextStyle(models.DefaultForeground, ""),
	}
}

// Name returns the collector identifier.
func (c *PowerCollector) Name() string { return "power" }

// IsAvailable returns true. A missing battery shows up as an absent block.
func (c *PowerCollector) IsAvailable() bool { return true }

// Collect reads the charge percentage and the status string.
// Either file missing or an unparsable capacity makes the block absent.
func (c *PowerCollector) Collect(_ context.Context) (models.Block, error) {
	capacity, err := readSysfs(filepath.Join(c.dir, "capacity"))
	if err != nil {
		return models.Block{}, err
	}
	percent, err := strconv.Atoi(capacity)
	if err != nil {
		return models.Block{}, fmt.Errorf("parsing capacity %q: %w", capacity, err)
	}

	status, err := readSysfs(filepath.Join(c.dir, "status"))
	if err != nil {
		return models.Block{}, err
	}

	return models.NewBlock(powerIcon(status), fmt.Sprintf("%d%%", percent), c.style), nil
}

// powerIcon is a two-way switch on the status string.
func powerIcon(status string) string {
	if status == statusDischarging {
		return dischargingIcon
	}
	return chargingIcon
}

func readSysfs(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
