package accessory

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	upowerDest        = "org.freedesktop.UPower"
	upowerPath        = dbus.ObjectPath("/org/freedesktop/UPower")
	upowerEnumerate   = "org.freedesktop.UPower.EnumerateDevices"
	upowerDeviceIface = "org.freedesktop.UPower.Device"
	propertiesGet     = "org.freedesktop.DBus.Properties.Get"
)

// UPower is a Bus backed by the UPower daemon on the system bus.
type UPower struct {
	conn *dbus.Conn
}

// DialUPower connects to the system bus. The UPower daemon itself may be
// absent; that only shows up as failed calls later.
func DialUPower() (*UPower, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to system bus: %w", err)
	}
	return &UPower{conn: conn}, nil
}

// EnumerateDevices lists the object paths of all power devices.
func (u *UPower) EnumerateDevices(ctx context.Context) ([]string, error) {
	var paths []dbus.ObjectPath
	err := u.conn.Object(upowerDest, upowerPath).
		CallWithContext(ctx, upowerEnumerate, 0).
		Store(&paths)
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	devices := make([]string, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, string(p))
	}
	return devices, nil
}

// Percentage reads the charge of the device at path.
func (u *UPower) Percentage(ctx context.Context, device string) (float64, error) {
	var v dbus.Variant
	err := u.conn.Object(upowerDest, dbus.ObjectPath(device)).
		CallWithContext(ctx, propertiesGet, 0, upowerDeviceIface, "Percentage").
		Store(&v)
	if err != nil {
		return 0, fmt.Errorf("reading percentage of %s: %w", device, err)
	}

	percentage, ok := v.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("percentage of %s has type %s", device, v.Signature())
	}
	return percentage, nil
}

// Close releases the system bus connection.
func (u *UPower) Close() error {
	return u.conn.Close()
}
