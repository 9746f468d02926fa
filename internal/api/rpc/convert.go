package rpc

import (
	"time"

	"github.com/osa030/melodia/internal/app/playback"
	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/domain/user"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseTime parses a timestamp produced by the server. Invalid input yields the zero time.
func ParseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// FromArtist converts a domain artist.
func FromArtist(a track.Artist) Artist {
	return Artist{
		ID:        a.ID,
		Name:      a.Name,
		AvatarURL: a.AvatarURL,
		Followers: a.Followers,
	}
}

// FromArtists converts domain artists.
func FromArtists(artists []track.Artist) []Artist {
	result := make([]Artist, len(artists))
	for i, a := range artists {
		result[i] = FromArtist(a)
	}
	return result
}

// FromTrack converts a domain track.
func FromTrack(t track.Track) Song {
	return Song{
		ID:              t.ID,
		Title:           t.Title,
		Artist:          FromArtist(t.Artist),
		CoverURL:        t.CoverURL,
		AudioURL:        t.AudioURL,
		DurationSeconds: int64(t.Duration / time.Second),
		Plays:           t.Plays,
		Likes:           t.Likes,
		CreatedAt:       formatTime(t.CreatedAt),
	}
}

// FromTracks converts domain tracks.
func FromTracks(tracks []track.Track) []Song {
	result := make([]Song, len(tracks))
	for i, t := range tracks {
		result[i] = FromTrack(t)
	}
	return result
}

// ToTrack converts a song back into a domain track.
func ToTrack(s Song) track.Track {
	return track.Track{
		ID:    s.ID,
		Title: s.Title,
		Artist: track.Artist{
			ID:        s.Artist.ID,
			Name:      s.Artist.Name,
			AvatarURL: s.Artist.AvatarURL,
			Followers: s.Artist.Followers,
		},
		CoverURL:  s.CoverURL,
		AudioURL:  s.AudioURL,
		Duration:  time.Duration(s.DurationSeconds) * time.Second,
		Plays:     s.Plays,
		Likes:     s.Likes,
		CreatedAt: ParseTime(s.CreatedAt),
	}
}

// FromPlaylist converts a domain playlist.
func FromPlaylist(p playlist.Playlist) Playlist {
	return Playlist{
		ID:                   p.ID,
		Name:                 p.Name,
		CoverURL:             p.Cover(),
		OwnerID:              p.OwnerID,
		Songs:                FromTracks(p.Tracks),
		Likes:                p.Likes,
		TotalDurationSeconds: p.TotalDuration(),
		CreatedAt:            formatTime(p.CreatedAt),
	}
}

// FromPlaylists converts domain playlists.
func FromPlaylists(playlists []playlist.Playlist) []Playlist {
	result := make([]Playlist, len(playlists))
	for i, p := range playlists {
		result[i] = FromPlaylist(p)
	}
	return result
}

// FromUser converts a domain user. The password hash is never exposed.
func FromUser(u user.User) User {
	return User{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		AvatarURL:  u.AvatarURL,
		CoverURL:   u.CoverURL,
		Bio:        u.Bio,
		Followers:  u.Followers,
		Following:  u.Following,
		TotalPlays: u.TotalPlays,
		CreatedAt:  formatTime(u.CreatedAt),
	}
}

// FromState converts a playback state snapshot.
func FromState(s playback.PlaybackState) PlayerState {
	state := PlayerState{
		Status:      s.Status().String(),
		IsPlaying:   s.IsPlaying,
		PositionMs:  s.Position.Milliseconds(),
		DurationMs:  s.Duration.Milliseconds(),
		Volume:      s.Volume,
		Shuffle:     s.Shuffle,
		Repeat:      s.Repeat.String(),
		QueueIndex:  s.QueueIndex,
		QueueLength: s.QueueLength,
	}
	if s.CurrentTrack != nil {
		song := FromTrack(*s.CurrentTrack)
		state.CurrentSong = &song
	}
	return state
}

// ToProfilePatch converts an update request into a domain patch.
func ToProfilePatch(r *UpdateProfileRequest) user.ProfilePatch {
	return user.ProfilePatch{
		Username:  r.Username,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
		CoverURL:  r.CoverURL,
	}
}
