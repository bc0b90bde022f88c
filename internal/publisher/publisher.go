// Package publisher hands a finished status line to the window manager.
// dwm shows the root window's name as its status text, so publishing is
// two runs of a title setter: one to clear the name, one to set it.
package publisher

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCommand sets the root window name.
	DefaultCommand = "xsetroot"

	// commandTimeout bounds each run of the title setter.
	commandTimeout = 5 * time.Second
)

// Publisher receives one rendered line per cycle.
type Publisher interface {
	Publish(ctx context.Context, line string) error
}

// CommandRunner runs name with args. A non-zero exit must be reported as an
// error.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the command through os/exec, folding its stderr into the
// returned error.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, out)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// RootWindow publishes by setting the X root window name.
type RootWindow struct {
	run     CommandRunner
	command string
	logger  *zap.Logger
}

// NewRootWindow creates a root window publisher. An empty command uses
// DefaultCommand and a nil runner uses ExecRunner.
func NewRootWindow(run CommandRunner, command string, logger *zap.Logger) *RootWindow {
	if run == nil {
		run = ExecRunner
	}
	if command == "" {
		command = DefaultCommand
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RootWindow{
		run:     run,
		command: command,
		logger:  logger.Named("publisher"),
	}
}

// Publish clears the root window name, then sets it to line.
func (p *RootWindow) Publish(ctx context.Context, line string) error {
	if err := p.name(ctx, ""); err != nil {
		return fmt.Errorf("clearing status: %w", err)
	}
	if err := p.name(ctx, line); err != nil {
		return fmt.Errorf("setting status: %w", err)
	}
	p.logger.Debug("Status published", zap.Int("bytes", len(line)))
	return nil
}

func (p *RootWindow) name(ctx context.Context, value string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return p.run(ctx, p.command, "-name", value)
}

// DryRun writes each line to out instead of touching the window manager.
type DryRun struct {
	out    io.Writer
	logger *zap.Logger
}

// NewDryRun creates a publisher that prints lines to out.
func NewDryRun(out io.Writer, logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{out: out, logger: logger.Named("publisher")}
}

// Publish writes line followed by a newline.
func (p *DryRun) Publish(_ context.Context, line string) error {
	p.logger.Info("Dry run, status not set", zap.String("line", line))
	if _, err := fmt.Fprintln(p.out, line); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}
	return nil
}
