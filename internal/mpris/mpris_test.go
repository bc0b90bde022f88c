package mpris

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPlayer(t *testing.T) {
	names := []string{
		"org.freedesktop.DBus",
		":1.42",
		"org.mpris.MediaPlayer2.spotify",
		"org.mpris.MediaPlayer2.firefox.instance123",
	}

	name, ok := findPlayer(names, DefaultMatch)
	require.True(t, ok)
	assert.Equal(t, "org.mpris.MediaPlayer2.spotify", name)

	_, ok = findPlayer(names, "vlc")
	assert.False(t, ok)

	_, ok = findPlayer(nil, DefaultMatch)
	assert.False(t, ok)
}

func TestTrackFromMetadata(t *testing.T) {
	tests := []struct {
		name    string
		props   map[string]dbus.Variant
		want    Track
		wantErr bool
	}{
		{
			name: "complete",
			props: map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant([]string{"Daft", "Punk"}),
				"xesam:title":  dbus.MakeVariant("Aerodynamic"),
				"mpris:length": dbus.MakeVariant(int64(212000000)),
			},
			want: Track{Artists: []string{"Daft", "Punk"}, Title: "Aerodynamic"},
		},
		{
			name: "empty artist list",
			props: map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant([]string{}),
				"xesam:title":  dbus.MakeVariant("Untitled"),
			},
			want: Track{Artists: []string{}, Title: "Untitled"},
		},
		{
			name: "missing title",
			props: map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant([]string{"Someone"}),
			},
			wantErr: true,
		},
		{
			name: "missing artist",
			props: map[string]dbus.Variant{
				"xesam:title": dbus.MakeVariant("Song"),
			},
			wantErr: true,
		},
		{
			name: "artist with wrong type",
			props: map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant("not a list"),
				"xesam:title":  dbus.MakeVariant("Song"),
			},
			wantErr: true,
		},
		{
			name:    "no metadata",
			props:   map[string]dbus.Variant{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := trackFromMetadata(tt.props)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoTrack)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
