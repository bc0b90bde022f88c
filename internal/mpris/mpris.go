// Package mpris reads the currently playing track from an MPRIS media
// player on the D-Bus session bus.
package mpris

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	// DefaultMatch selects the first bus name containing this substring.
	DefaultMatch = "mpris"

	objectPath     = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	playerIface    = "org.mpris.MediaPlayer2.Player"
	propertiesGet  = "org.freedesktop.DBus.Properties.Get"
	listNames      = "org.freedesktop.DBus.ListNames"
	artistProperty = "xesam:artist"
	titleProperty  = "xesam:title"
)

var (
	// ErrNoPlayer is returned when no bus name matches.
	ErrNoPlayer = errors.New("no media player on the session bus")

	// ErrNoTrack is returned when the player's metadata lacks a title.
	ErrNoTrack = errors.New("player metadata has no track")
)

// Track is the subset of MPRIS metadata shown on the bar.
type Track struct {
	Artists []string
	Title   string
}

// Client talks to media players over one session bus connection.
type Client struct {
	conn  *dbus.Conn
	match string
}

// Dial connects to the session bus. Failing to connect is a startup error.
func Dial(match string) (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	if match == "" {
		match = DefaultMatch
	}
	return &Client{conn: conn, match: match}, nil
}

// Track returns the current track of the first matching player.
func (c *Client) Track(ctx context.Context) (Track, error) {
	var names []string
	if err := c.conn.BusObject().CallWithContext(ctx, listNames, 0).Store(&names); err != nil {
		return Track{}, fmt.Errorf("listing bus names: %w", err)
	}

	name, ok := findPlayer(names, c.match)
	if !ok {
		return Track{}, ErrNoPlayer
	}

	var metadata dbus.Variant
	err := c.conn.Object(name, objectPath).
		CallWithContext(ctx, propertiesGet, 0, playerIface, "Metadata").
		Store(&metadata)
	if err != nil {
		return Track{}, fmt.Errorf("reading metadata from %s: %w", name, err)
	}

	props, ok := metadata.Value().(map[string]dbus.Variant)
	if !ok {
		return Track{}, fmt.Errorf("%w: unexpected metadata type %s", ErrNoTrack, metadata.Signature())
	}
	return trackFromMetadata(props)
}

// Close releases the session bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func findPlayer(names []string, match string) (string, bool) {
	for _, name := range names {
		if strings.Contains(name, match) {
			return name, true
		}
	}
	return "", false
}

// trackFromMetadata requires both properties to be present with the
// types MPRIS defines for them. An empty artist list is allowed.
func trackFromMetadata(props map[string]dbus.Variant) (Track, error) {
	artistVar, ok := props[artistProperty]
	if !ok {
		return Track{}, fmt.Errorf("%w: missing %s", ErrNoTrack, artistProperty)
	}
	artists, ok := artistVar.Value().([]string)
	if !ok {
		return Track{}, fmt.Errorf("%w: %s is %s", ErrNoTrack, artistProperty, artistVar.Signature())
	}

	titleVar, ok := props[titleProperty]
	if !ok {
		return Track{}, fmt.Errorf("%w: missing %s", ErrNoTrack, titleProperty)
	}
	title, ok := titleVar.Value().(string)
	if !ok {
		return Track{}, fmt.Errorf("%w: %s is %s", ErrNoTrack, titleProperty, titleVar.Signature())
	}

	return Track{Artists: artists, Title: title}, nil
}
