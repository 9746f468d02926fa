// Package catalog provides read access to songs, artists and playlists and
// resolves play contexts into queues.
package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
)

var (
	ErrInvalidContext = errors.New("invalid play context")
	ErrLoginRequired  = errors.New("play context requires a signed-in user")
)

// Play context prefixes.
const (
	ContextPlaylist = "playlist:"
	ContextArtist   = "artist:"
	ContextSearch   = "search:"
	ContextLiked    = "liked"
	ContextAll      = "all"
)

// Repository is the storage the catalog reads from.
type Repository interface {
	ListSongs(ctx context.Context) ([]track.Track, error)
	GetSong(ctx context.Context, id string) (track.Track, error)
	SongsByArtist(ctx context.Context, artistID string) ([]track.Track, error)
	ListArtists(ctx context.Context) ([]track.Artist, error)
	GetArtist(ctx context.Context, id string) (track.Artist, error)
	ListPlaylists(ctx context.Context) ([]playlist.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (playlist.Playlist, error)
	LikedSongs(ctx context.Context, userID string) ([]track.Track, error)
	IncrementPlays(ctx context.Context, id string) error
}

// ArtistDetail is an artist with their songs.
type ArtistDetail struct {
	Artist track.Artist
	Songs  []track.Track
}

// SearchResults groups the matches of a search query.
type SearchResults struct {
	Songs     []track.Track
	Playlists []playlist.Playlist
	Artists   []track.Artist
}

// Service provides catalog operations.
type Service struct {
	repo Repository
}

// NewService creates a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListSongs returns all songs, newest first.
func (s *Service) ListSongs(ctx context.Context) ([]track.Track, error) {
	return s.repo.ListSongs(ctx)
}

// GetSong returns a song by ID.
func (s *Service) GetSong(ctx context.Context, id string) (track.Track, error) {
	return s.repo.GetSong(ctx, id)
}

// GetArtist returns an artist and their songs.
func (s *Service) GetArtist(ctx context.Context, id string) (ArtistDetail, error) {
	artist, err := s.repo.GetArtist(ctx, id)
	if err != nil {
		return ArtistDetail{}, err
	}
	songs, err := s.repo.SongsByArtist(ctx, id)
	if err != nil {
		return ArtistDetail{}, err
	}
	return ArtistDetail{Artist: artist, Songs: songs}, nil
}

// GetPlaylist returns a playlist with its songs.
func (s *Service) GetPlaylist(ctx context.Context, id string) (playlist.Playlist, error) {
	return s.repo.GetPlaylist(ctx, id)
}

// ListPlaylists returns all playlists.
func (s *Service) ListPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	return s.repo.ListPlaylists(ctx)
}

// Search matches songs by title or artist name, playlists by name and
// artists by name, ignoring case. A blank query returns empty results.
func (s *Service) Search(ctx context.Context, query string) (SearchResults, error) {
	results := SearchResults{
		Songs:     []track.Track{},
		Playlists: []playlist.Playlist{},
		Artists:   []track.Artist{},
	}
	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	songs, err := s.repo.ListSongs(ctx)
	if err != nil {
		return results, err
	}
	for i := range songs {
		if songs[i].Matches(query) {
			results.Songs = append(results.Songs, songs[i])
		}
	}

	playlists, err := s.repo.ListPlaylists(ctx)
	if err != nil {
		return results, err
	}
	for i := range playlists {
		if playlists[i].Matches(query) {
			results.Playlists = append(results.Playlists, playlists[i])
		}
	}

	artists, err := s.repo.ListArtists(ctx)
	if err != nil {
		return results, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, a := range artists {
		if strings.Contains(strings.ToLower(a.Name), q) {
			results.Artists = append(results.Artists, a)
		}
	}

	zlog.Debug().Msgf("catalog: search: query=%q songs=%d playlists=%d artists=%d",
		query, len(results.Songs), len(results.Playlists), len(results.Artists))
	return results, nil
}

// ResolvePlay returns the song to play and the list that becomes the queue.
// playContext is one of "playlist:<id>", "artist:<id>", "search:<query>",
// "liked", "all" or empty for the song alone. userID is required for "liked".
func (s *Service) ResolvePlay(ctx context.Context, songID, playContext, userID string) (track.Track, []track.Track, error) {
	song, err := s.repo.GetSong(ctx, songID)
	if err != nil {
		return track.Track{}, nil, err
	}

	var list []track.Track
	switch {
	case playContext == "":
		list = []track.Track{song}
	case playContext == ContextAll:
		list, err = s.repo.ListSongs(ctx)
	case playContext == ContextLiked:
		if userID == "" {
			return track.Track{}, nil, ErrLoginRequired
		}
		list, err = s.repo.LikedSongs(ctx, userID)
	case strings.HasPrefix(playContext, ContextPlaylist):
		var p playlist.Playlist
		p, err = s.repo.GetPlaylist(ctx, strings.TrimPrefix(playContext, ContextPlaylist))
		list = p.Tracks
	case strings.HasPrefix(playContext, ContextArtist):
		list, err = s.repo.SongsByArtist(ctx, strings.TrimPrefix(playContext, ContextArtist))
	case strings.HasPrefix(playContext, ContextSearch):
		var results SearchResults
		results, err = s.Search(ctx, strings.TrimPrefix(playContext, ContextSearch))
		list = results.Songs
	default:
		return track.Track{}, nil, errors.Wrapf(ErrInvalidContext, "%q", playContext)
	}
	if err != nil {
		return track.Track{}, nil, err
	}

	return song, list, nil
}

// RecordPlay increments the play count of a song.
func (s *Service) RecordPlay(ctx context.Context, songID string) error {
	return s.repo.IncrementPlays(ctx, songID)
}
