//go:build linux || darwin

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "barline", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "barline", "config.yaml"))
	}
	return append(paths, "/etc/barline/config.yaml")
}
