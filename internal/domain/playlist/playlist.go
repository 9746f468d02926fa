// Package playlist provides the Playlist domain entity.
package playlist

import (
	"strings"
	"time"

	"github.com/osa030/melodia/internal/domain/track"
)

// Playlist represents an ordered, named list of tracks.
type Playlist struct {
	ID        string        // Playlist ID
	Name      string        // Playlist name
	CoverURL  string        // Cover image URL
	OwnerID   string        // Owning user ID (empty for editorial playlists)
	Tracks    []track.Track // Tracks in playlist order
	Likes     int           // Like count
	CreatedAt time.Time     // Creation time
}

// TrackIDs returns all track IDs in the playlist.
func (p *Playlist) TrackIDs() []string {
	return track.IDs(p.Tracks)
}

// TotalDuration returns the total duration of all tracks in seconds.
func (p *Playlist) TotalDuration() int64 {
	var total int64
	for _, t := range p.Tracks {
		total += int64(t.Duration.Seconds())
	}
	return total
}

// Matches reports whether the playlist name contains query, ignoring case.
func (p *Playlist) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), q)
}

// Cover returns the playlist cover, falling back to the first track's cover.
func (p *Playlist) Cover() string {
	if p.CoverURL != "" {
		return p.CoverURL
	}
	if len(p.Tracks) > 0 {
		return p.Tracks[0].CoverURL
	}
	return ""
}
