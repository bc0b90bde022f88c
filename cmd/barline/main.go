// Package main is the entry point for barline, the dwm status line.
// It loads configuration, wires the status sources in bar order, and either
// publishes one line and exits or keeps publishing on a fixed period.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/barline/internal/accessory"
	"github.com/Guliveer/barline/internal/autostart"
	"github.com/Guliveer/barline/internal/collector"
	"github.com/Guliveer/barline/internal/config"
	"github.com/Guliveer/barline/internal/mpris"
	"github.com/Guliveer/barline/internal/platform"
	"github.com/Guliveer/barline/internal/publisher"
	"github.com/Guliveer/barline/internal/scheduler"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	once        = pflag.Bool("once", false, "Publish a single status line and exit")
	dryRun      = pflag.Bool("dry-run", false, "Print the status line to stdout instead of setting it")
	configPath  = pflag.StringP("config", "c", "", "Path to configuration file (default: search standard locations)")
	logLevel    = pflag.String("log-level", "", "Override the log level (debug, info, warn, error)")
	interval    = pflag.Duration("interval", 0, "Override the cycle interval")
	writeConfig = pflag.String("write-config", "", "Write the effective configuration to this path and exit")
	showVersion = pflag.Bool("version", false, "Show version and exit")

	installAutostart   = pflag.Bool("install-autostart", false, "Install and start a systemd user service for the graphical session")
	uninstallAutostart = pflag.Bool("uninstall-autostart", false, "Stop and remove the systemd user service")
)

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Printf("barline %s\n", version)
		os.Exit(0)
	}

	if *installAutostart || *uninstallAutostart {
		if err := manageAutostart(); err != nil {
			fmt.Fprintf(os.Stderr, "Autostart failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := config.WriteConfig(cfg, *writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", *writeConfig)
		os.Exit(0)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	logStartup(ctx, cfg, logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("barline failed", zap.Error(err))
	}
	logger.Info("barline stopped")
}

func manageAutostart() error {
	mgr, err := autostart.New()
	if err != nil {
		return err
	}

	if *uninstallAutostart {
		if err := mgr.Uninstall(); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", mgr.UnitPath())
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	var args []string
	if *configPath != "" {
		abs, err := filepath.Abs(*configPath)
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		args = append(args, "--config", abs)
	}
	if err := mgr.Install(execPath, args...); err != nil {
		return err
	}
	fmt.Printf("Installed %s\n", mgr.UnitPath())
	return nil
}

func loadConfig() (*config.Config, error) {
	cli := config.CLIOverrides{
		LogLevel: *logLevel,
		Interval: *interval,
	}
	if *configPath != "" {
		return config.LoadLayered(cli, embeddedConfig, *configPath)
	}
	return config.LoadLayered(cli, embeddedConfig)
}

// run connects the long-lived bus clients, registers the sources and drives
// the cycles. Bus clients are closed before it returns.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (retErr error) {
	tracks, err := mpris.Dial(cfg.Media.Match)
	if err != nil {
		return fmt.Errorf("media player source: %w", err)
	}
	defer multierr.AppendInvoke(&retErr, multierr.Close(tracks))

	var latest collector.LatestReader
	if cfg.Accessory.Enabled {
		bus, err := accessory.DialUPower()
		if err != nil {
			return fmt.Errorf("accessory poller: %w", err)
		}
		poller, err := accessory.New(bus, accessory.Config{
			Match:    cfg.Accessory.Match,
			Interval: cfg.Accessory.Interval.Duration,
		}, logger)
		if err != nil {
			return multierr.Append(fmt.Errorf("accessory poller: %w", err), bus.Close())
		}
		defer multierr.AppendInvoke(&retErr, multierr.Close(poller))
		latest = poller
	}

	// Registration order is bar order.
	registry := collector.NewRegistry(logger)
	registry.Register(collector.NewMediaCollector(tracks, cfg.Media.TextLimit))
	registry.Register(collector.NewVolumeCollector(nil, cfg.Volume.Command, cfg.Volume.Args...))
	registry.Register(collector.NewAccessoryCollector(latest))
	registry.Register(collector.NewPowerCollector(cfg.Power.SupplyDir))
	registry.Register(collector.NewCPUCollector(collector.FileStatReader(cfg.CPU.StatPath)))
	registry.Register(collector.NewClockCollector(cfg.Clock.Format, nil))

	sched := scheduler.New(registry, newPublisher(cfg, logger),
		cfg.Collection.Interval.Duration, cfg.Collection.Warmup.Duration, logger)

	if *once {
		return sched.RunOnce(ctx)
	}

	logger.Info("barline running",
		zap.Duration("interval", cfg.Collection.Interval.Duration),
		zap.Int("sources", len(registry.Collectors())),
		zap.Bool("dry_run", *dryRun))
	return sched.Start(ctx)
}

func newPublisher(cfg *config.Config, logger *zap.Logger) publisher.Publisher {
	if *dryRun {
		return publisher.NewDryRun(os.Stdout, logger)
	}
	if !platform.HasDisplay() {
		logger.Warn("DISPLAY is not set, publishing will likely fail")
	}
	return publisher.NewRootWindow(nil, cfg.Publish.Command, logger)
}

func logStartup(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	fields := []zap.Field{zap.String("version", version)}
	if info, err := platform.Describe(ctx); err == nil {
		fields = append(fields,
			zap.String("host", info.Hostname),
			zap.Stringer("platform", info))
	} else {
		logger.Debug("Host info unavailable", zap.Error(err))
	}
	if cfg.Logging.File != "" {
		fields = append(fields, zap.String("log_file", cfg.Logging.File))
	}
	logger.Info("Starting barline", fields...)
}

// initLogger creates a zap logger based on the configuration.
// It writes human-readable output to stderr, keeping stdout free for
// dry-run lines, and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
