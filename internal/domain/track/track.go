// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"
)

// Artist represents the performer of a track.
type Artist struct {
	ID        string // Artist ID
	Name      string // Display name
	AvatarURL string // Avatar image URL
	Followers int    // Follower count
}

// Track represents a playable audio item.
// Tracks are immutable once loaded from the catalog; the playback
// controller never mutates them.
type Track struct {
	ID        string        // Track ID
	Title     string        // Track title
	Artist    Artist        // Main artist
	CoverURL  string        // Cover image URL
	AudioURL  string        // Audio source (file name under the media dir or absolute URL)
	Duration  time.Duration // Track duration
	Plays     int           // Play count
	Likes     int           // Like count
	CreatedAt time.Time     // Time when added to the catalog
}

// Matches reports whether the track title or artist name contains query,
// ignoring case. An empty query never matches.
func (t *Track) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Artist.Name), q)
}

// IsRemoteSource returns true if source is an absolute http(s) URL.
func IsRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// IndexOf returns the index of the track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the IDs of the given tracks in order.
func IDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}
