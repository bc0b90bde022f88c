// Package platform describes the machine barline runs on. It backs the
// startup banner and the check for a usable X display.
package platform

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// Info is a short summary of the host.
type Info struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	UptimeSeconds   uint64
}

// String renders the platform and kernel, e.g. "arch rolling (linux 6.9.1-arch1-1)".
func (i Info) String() string {
	name := strings.TrimSpace(i.Platform + " " + i.PlatformVersion)
	if name == "" {
		name = i.OS
	}
	if i.KernelVersion == "" {
		return name
	}
	return fmt.Sprintf("%s (%s %s)", name, i.OS, i.KernelVersion)
}

// Describe queries the host via gopsutil.
func Describe(ctx context.Context) (Info, error) {
	h, err := host.InfoWithContext(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("reading host info: %w", err)
	}
	return Info{
		Hostname:        h.Hostname,
		OS:              h.OS,
		Platform:        h.Platform,
		PlatformVersion: h.PlatformVersion,
		KernelVersion:   h.KernelVersion,
		UptimeSeconds:   h.Uptime,
	}, nil
}

// HasDisplay reports whether an X display is configured for this process.
// Without one the root window name cannot be set.
func HasDisplay() bool {
	return os.Getenv("DISPLAY") != ""
}
