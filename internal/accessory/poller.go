// Package accessory keeps a wireless accessory's battery level fresh in the
// background. The poller holds one long-lived bus connection, finds the
// device by a substring of its object path, and finds it again whenever a
// read against the remembered device fails.
package accessory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/barline/internal/models"
)

const (
	// DefaultMatch picks Bluetooth headsets, whose UPower paths look like
	// /org/freedesktop/UPower/devices/headset_dev_XX_XX_XX_XX_XX_XX.
	DefaultMatch = "headset"

	// DefaultInterval is the poll period.
	DefaultInterval = 30 * time.Second

	// DefaultCallTimeout bounds each bus round trip.
	DefaultCallTimeout = 2 * time.Second

	headsetIcon = "\uf025"
)

// ErrNoDevice is returned by discovery when no device path matches.
var ErrNoDevice = errors.New("no matching accessory")

// Bus is the device-discovery transport the poller owns.
type Bus interface {
	EnumerateDevices(ctx context.Context) ([]string, error)
	Percentage(ctx context.Context, device string) (float64, error)
	Close() error
}

// Config holds poller settings. Zero values take the defaults above.
type Config struct {
	Match       string
	Interval    time.Duration
	CallTimeout time.Duration
}

// State is the poller's view of its device handle.
type State int

const (
	// Unbound means no device is known; the next tick runs discovery.
	Unbound State = iota
	// Bound means a device was found and is believed valid.
	Bound
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	default:
		return "unknown"
	}
}

// Poller samples the accessory on its own period and publishes the result
// to a latest-value cell. Readers call Latest and never wait on the bus.
type Poller struct {
	bus      Bus
	match    string
	interval time.Duration
	timeout  time.Duration
	style    models.Style
	logger   *zap.Logger

	// device is only touched by the constructor and then the run goroutine.
	device string
	latest Cell

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New takes ownership of bus, attempts one sample, and starts polling.
// A missing device is not an error; the poller starts Unbound and keeps
// looking. The caller must Close the poller to release the bus.
func New(bus Bus, cfg Config, logger *zap.Logger) (*Poller, error) {
	if bus == nil {
		return nil, fmt.Errorf("accessory poller: nil bus")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Match == "" {
		cfg.Match = DefaultMatch
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}

	p := &Poller{
		bus:      bus,
		match:    cfg.Match,
		interval: cfg.Interval,
		timeout:  cfg.CallTimeout,
		style:    models.TextStyle(models.DefaultForeground, ""),
		logger:   logger.Named("accessory"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	p.tick()
	go p.run()

	return p, nil
}

// Latest returns the most recently published sample.
func (p *Poller) Latest() (models.Block, bool) {
	return p.latest.Load()
}

// Close stops the polling goroutine, waits for it to exit, and closes the
// bus. It is safe to call more than once.
func (p *Poller) Close() error {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		p.closeErr = p.bus.Close()
		p.logger.Debug("Poller stopped")
	})
	return p.closeErr
}

func (p *Poller) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick takes one sample and publishes it, or publishes absence.
func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	block, err := p.sample(ctx)
	if err != nil {
		p.latest.Store(nil)
		return
	}
	p.latest.Store(&block)
}

func (p *Poller) sample(ctx context.Context) (models.Block, error) {
	if p.state() == Unbound {
		if err := p.discover(ctx); err != nil {
			p.logger.Debug("Accessory discovery failed", zap.Error(err))
			return models.Block{}, err
		}
		p.logger.Info("Accessory found", zap.String("device", p.device))
	}

	percentage, err := p.bus.Percentage(ctx, p.device)
	if err != nil {
		// Forget the device so a renamed or re-paired one is found again.
		p.logger.Warn("Accessory read failed, rediscovering next tick",
			zap.String("device", p.device),
			zap.Error(err))
		p.device = ""
		return models.Block{}, err
	}

	return models.NewBlock(headsetIcon, fmt.Sprintf("%.0f%%", percentage), p.style), nil
}

func (p *Poller) discover(ctx context.Context) error {
	devices, err := p.bus.EnumerateDevices(ctx)
	if err != nil {
		return err
	}
	for _, d := range devices {
		if strings.Contains(d, p.match) {
			p.device = d
			return nil
		}
	}
	return fmt.Errorf("%w: %q among %d devices", ErrNoDevice, p.match, len(devices))
}

func (p *Poller) state() State {
	if p.device == "" {
		return Unbound
	}
	return Bound
}
