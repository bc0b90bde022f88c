// Package autostart installs barline as a systemd user service bound to the
// graphical session, so the status line starts and stops with X.
package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ServiceName is the systemd user unit name, without the suffix.
const ServiceName = "barline"

// unitTemplate is the unit file written during installation.
// The placeholder {execStart} is replaced with the command line.
const unitTemplate = `[Unit]
Description=barline dwm status line
PartOf=graphical-session.target
After=graphical-session.target

[Service]
Type=simple
ExecStart={execStart}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=graphical-session.target
`

// Runner runs a systemctl command.
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Manager writes and removes the user unit and drives systemctl --user.
type Manager struct {
	unitDir string
	run     Runner
}

// New returns a Manager for the current user's systemd unit directory.
func New() (*Manager, error) {
	dir, err := userUnitDir()
	if err != nil {
		return nil, err
	}
	return NewWithDir(dir, nil), nil
}

// NewWithDir returns a Manager that keeps its unit in dir. A nil run uses
// os/exec.
func NewWithDir(dir string, run Runner) *Manager {
	if run == nil {
		run = execRunner
	}
	return &Manager{unitDir: dir, run: run}
}

// UnitPath returns the path of the unit file.
func (m *Manager) UnitPath() string {
	return filepath.Join(m.unitDir, ServiceName+".service")
}

// IsInstalled checks whether the unit file exists.
func (m *Manager) IsInstalled() (bool, error) {
	_, err := os.Stat(m.UnitPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking unit file: %w", err)
	}
	return true, nil
}

// Install writes the unit file for execPath and args, reloads the user
// manager, and enables and starts the service.
func (m *Manager) Install(execPath string, args ...string) error {
	if err := os.MkdirAll(m.unitDir, 0755); err != nil {
		return fmt.Errorf("creating unit directory: %w", err)
	}

	unit := strings.ReplaceAll(unitTemplate, "{execStart}", execStart(execPath, args))
	if err := os.WriteFile(m.UnitPath(), []byte(unit), 0644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}

	commands := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", "--now", ServiceName},
	}
	for _, c := range commands {
		if err := m.run(c[0], c[1:]...); err != nil {
			return fmt.Errorf("running %s: %w", strings.Join(c, " "), err)
		}
	}
	return nil
}

// Uninstall stops, disables, and removes the user service.
func (m *Manager) Uninstall() error {
	// Best-effort; the service may already be inactive.
	_ = m.run("systemctl", "--user", "disable", "--now", ServiceName)

	if err := os.Remove(m.UnitPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing unit file: %w", err)
	}

	_ = m.run("systemctl", "--user", "daemon-reload")
	return nil
}

// execStart quotes every word that systemd would otherwise split.
func execStart(execPath string, args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{execPath}, args...) {
		if strings.ContainsAny(w, " \t\"'") {
			w = `"` + strings.ReplaceAll(w, `"`, `\"`) + `"`
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

func userUnitDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "systemd", "user"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user"), nil
}
