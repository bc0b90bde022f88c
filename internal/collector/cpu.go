// CPU load collector: reports utilization since the previous call.
// Reads the aggregate "cpu" line of /proc/stat and keeps one previous
// snapshot to difference against.
package collector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Guliveer/barline/internal/models"
)

const (
	// minStatFields is the number of counters the aggregate line must carry
	// (user nice system idle iowait irq softirq steal).
	minStatFields = 8

	idleField   = 3
	iowaitField = 4

	cpuIcon = "\uf2db"
)

// StatReader returns the raw content of the kernel CPU counter file.
type StatReader func(ctx context.Context) ([]byte, error)

// FileStatReader reads the counter file at path.
func FileStatReader(path string) StatReader {
	return func(context.Context) ([]byte, error) {
		return os.ReadFile(path)
	}
}

// CPUCollector reports CPU utilization between two consecutive calls.
type CPUCollector struct {
	read  StatReader
	style models.Style

	mu   sync.Mutex
	prev *models.CPUStat
}

// NewCPUCollector creates a CPU load collector backed by read.
func NewCPUCollector(read StatReader) *CPUCollector {
	return &CPUCollector{
		read:  read,
		style: models.TextStyle(models.DefaultForeground, ""),
	}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// IsAvailable returns true. The counter file is read on every call.
func (c *CPUCollector) IsAvailable() bool { return true }

// Prime stores a baseline snapshot so the next Collect can report a value.
func (c *CPUCollector) Prime(ctx context.Context) error {
	stat, err := c.snapshot(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.prev = &stat
	c.mu.Unlock()
	return nil
}

// Collect takes a new snapshot and reports the active share of the ticks
// elapsed since the previous one. The first call has nothing to compare
// against and reports the source as unavailable.
func (c *CPUCollector) Collect(ctx context.Context) (models.Block, error) {
	curr, err := c.snapshot(ctx)
	if err != nil {
		return models.Block{}, err
	}

	c.mu.Lock()
	prev := c.prev
	c.prev = &curr
	c.mu.Unlock()

	if prev == nil {
		return models.Block{}, ErrUnavailable
	}

	ratio, ok := utilization(*prev, curr)
	if !ok {
		return models.Block{}, fmt.Errorf("%w: counters did not advance", ErrUnavailable)
	}

	return models.NewBlock(cpuIcon, fmt.Sprintf("%.2f %%", ratio*100), c.style), nil
}

func (c *CPUCollector) snapshot(ctx context.Context) (models.CPUStat, error) {
	data, err := c.read(ctx)
	if err != nil {
		return models.CPUStat{}, fmt.Errorf("reading cpu counters: %w", err)
	}
	return parseCPUStat(data)
}

// utilization differences two snapshots. Both deltas are taken as
// previous minus current, so for monotonic counters they are both
// negative and the ratio is the active fraction of the elapsed window.
// A window with no elapsed ticks, a counter reset, or a ratio outside
// [0, 1] is rejected.
func utilization(prev, curr models.CPUStat) (float64, bool) {
	activeDelta := prev.Active - curr.Active
	totalDelta := prev.Total - curr.Total
	if totalDelta >= 0 {
		return 0, false
	}

	ratio := float64(activeDelta) / float64(totalDelta)
	if ratio < 0 || ratio > 1 {
		return 0, false
	}
	return ratio, true
}

// parseCPUStat extracts the aggregate counters from the first line that
// starts with "cpu".
func parseCPUStat(data []byte) (models.CPUStat, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}

		fields := strings.Fields(line)[1:]
		if len(fields) < minStatFields {
			return models.CPUStat{}, fmt.Errorf("%w: cpu line has %d fields, want at least %d",
				ErrUnavailable, len(fields), minStatFields)
		}

		var stat models.CPUStat
		var idle int64
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return models.CPUStat{}, fmt.Errorf("%w: cpu field %d: %v", ErrUnavailable, i, err)
			}
			stat.Total += v
			if i == idleField || i == iowaitField {
				idle += v
			}
		}
		stat.Active = stat.Total - idle
		return stat, nil
	}
	if err := scanner.Err(); err != nil {
		return models.CPUStat{}, err
	}
	return models.CPUStat{}, fmt.Errorf("%w: no cpu line", ErrUnavailable)
}
