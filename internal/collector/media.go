// Media collector: artist and title of the currently playing track.
package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/Guliveer/barline/internal/models"
	"github.com/Guliveer/barline/internal/mpris"
)

const (
	// DefaultMediaTextLimit is the character budget of the media text.
	DefaultMediaTextLimit = 40

	anonymousArtist = "Anonymous"
	ellipsis        = "..."
	mediaIcon       = " \uf001"

	mediaIconBg = "#0C0C0C"
	mediaTextBg = "#171617"
)

// TrackSource returns the track that is playing right now.
type TrackSource interface {
	Track(ctx context.Context) (mpris.Track, error)
}

// MediaCollector renders the current track on a darker background so it
// stands apart from the other blocks.
type MediaCollector struct {
	source TrackSource
	limit  int
	style  models.Style
}

// NewMediaCollector creates a media collector. A limit <= 0 uses
// DefaultMediaTextLimit.
func NewMediaCollector(source TrackSource, limit int) *MediaCollector {
	if limit <= 0 {
		limit = DefaultMediaTextLimit
	}
	return &MediaCollector{
		source: source,
		limit:  limit,
		style: models.TextStyle(models.DefaultForeground, mediaTextBg).
			WithIcon(models.DefaultForeground, mediaIconBg),
	}
}

// Name returns the collector identifier.
func (c *MediaCollector) Name() string { return "media" }

// IsAvailable returns true when a track source is wired.
func (c *MediaCollector) IsAvailable() bool { return c.source != nil }

// Collect asks the player for its track. No player or incomplete metadata
// makes the block absent.
func (c *MediaCollector) Collect(ctx context.Context) (models.Block, error) {
	track, err := c.source.Track(ctx)
	if err != nil {
		return models.Block{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return models.NewBlock(mediaIcon, truncate(trackText(track), c.limit), c.style), nil
}

func trackText(track mpris.Track) string {
	artist := strings.Join(track.Artists, " ")
	if artist == "" {
		artist = anonymousArtist
	}
	return fmt.Sprintf(" %s - %s ", artist, track.Title)
}

// truncate cuts s to limit characters and appends an ellipsis. Strings at
// or under the limit are returned unchanged.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}
