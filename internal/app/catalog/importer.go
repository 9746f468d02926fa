package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/infra/store"
)

// PlaylistSource fetches an external playlist. skipped counts unplayable
// tracks that were left out.
type PlaylistSource interface {
	FetchPlaylist(ctx context.Context, ref string) (p playlist.Playlist, skipped int, err error)
}

// Writer is the storage the importer writes to.
type Writer interface {
	GetSong(ctx context.Context, id string) (track.Track, error)
	InsertSong(ctx context.Context, t *track.Track) error
	CreatePlaylist(ctx context.Context, p playlist.Playlist, songIDs []string) error
}

// ImportResult summarizes an import.
type ImportResult struct {
	PlaylistID string
	Name       string
	Added      int // Songs new to the catalog
	Reused     int // Songs already in the catalog
	Skipped    int // Songs without a playable source
}

// ImportPlaylist copies an external playlist into the catalog.
// Songs that already exist are linked rather than duplicated.
func ImportPlaylist(ctx context.Context, src PlaylistSource, w Writer, ref string) (ImportResult, error) {
	p, skipped, err := src.FetchPlaylist(ctx, ref)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{PlaylistID: p.ID, Name: p.Name, Skipped: skipped}
	ids := make([]string, 0, len(p.Tracks))
	seen := make(map[string]bool, len(p.Tracks))

	for i := range p.Tracks {
		t := p.Tracks[i]
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		_, err := w.GetSong(ctx, t.ID)
		switch {
		case err == nil:
			result.Reused++
		case errors.Is(err, store.ErrNotFound):
			if err := w.InsertSong(ctx, &t); err != nil {
				return ImportResult{}, errors.Wrapf(err, "failed to import song %s", t.ID)
			}
			result.Added++
		default:
			return ImportResult{}, err
		}
		ids = append(ids, t.ID)
	}

	if err := w.CreatePlaylist(ctx, playlist.Playlist{ID: p.ID, Name: p.Name, CoverURL: p.CoverURL}, ids); err != nil {
		return ImportResult{}, err
	}

	zlog.Info().Msgf("catalog: imported playlist: id=%s name=%q added=%d reused=%d skipped=%d",
		result.PlaylistID, result.Name, result.Added, result.Reused, result.Skipped)
	return result, nil
}
