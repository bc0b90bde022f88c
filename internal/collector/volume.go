// Volume collector: asks an external mixer for the current sink volume.
package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Guliveer/barline/internal/models"
)

const volumeIcon = "\uf028"

// CommandRunner runs name with args and returns its stdout.
// A non-zero exit must be reported as an error.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command through os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// VolumeCollector reports the trimmed output of a volume query command,
// e.g. "pamixer --get-volume".
type VolumeCollector struct {
	run     CommandRunner
	command string
	args    []string
	style   models.Style
}

// NewVolumeCollector creates a volume collector. A nil runner uses ExecRunner.
func NewVolumeCollector(run CommandRunner, command string, args ...string) *VolumeCollector {
	if run == nil {
		run = ExecRunner
	}
	return &VolumeCollector{
		run:     run,
		command: command,
		args:    args,
		style:   models.TextStyle(models.DefaultForeground, ""),
	}
}

// Name returns the collector identifier.
func (c *VolumeCollector) Name() string { return "volume" }

// IsAvailable returns true when a command is configured.
func (c *VolumeCollector) IsAvailable() bool { return c.command != "" }

// Collect runs the query command. A failed run or empty output makes the
// block absent.
func (c *VolumeCollector) Collect(ctx context.Context) (models.Block, error) {
	out, err := c.run(ctx, c.command, c.args...)
	if err != nil {
		return models.Block{}, fmt.Errorf("running %s: %w", c.command, err)
	}

	volume := strings.TrimSpace(string(out))
	if volume == "" {
		return models.Block{}, fmt.Errorf("%w: empty output from %s", ErrUnavailable, c.command)
	}

	return models.NewBlock(volumeIcon, volume+"%", c.style), nil
}
