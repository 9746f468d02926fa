package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
)

const playlistColumns = "id, name, cover_url, COALESCE(owner_id, ''), likes, created_at"

func scanPlaylist(row rowScanner) (playlist.Playlist, error) {
	var p playlist.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.CoverURL, &p.OwnerID, &p.Likes, &p.CreatedAt)
	return p, err
}

// ListPlaylists returns all playlists with their songs, oldest first.
func (s *Store) ListPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	return s.queryPlaylists(ctx, "SELECT "+playlistColumns+" FROM playlists ORDER BY created_at, id")
}

// PlaylistsByOwner returns the playlists created by a user.
func (s *Store) PlaylistsByOwner(ctx context.Context, ownerID string) ([]playlist.Playlist, error) {
	return s.queryPlaylists(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE owner_id = ? ORDER BY created_at, id", ownerID)
}

// GetPlaylist returns the playlist with the given ID and its ordered songs.
func (s *Store) GetPlaylist(ctx context.Context, id string) (playlist.Playlist, error) {
	p, err := scanPlaylist(s.db.QueryRowContext(ctx, "SELECT "+playlistColumns+" FROM playlists WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return playlist.Playlist{}, errors.Wrapf(ErrNotFound, "playlist %s", id)
	}
	if err != nil {
		return playlist.Playlist{}, errors.Wrap(err, "failed to get playlist")
	}

	if p.Tracks, err = s.playlistSongs(ctx, p.ID); err != nil {
		return playlist.Playlist{}, err
	}
	return p, nil
}

// CreatePlaylist inserts a playlist with the given song IDs in order.
// Unknown song IDs fail the whole insert.
func (s *Store) CreatePlaylist(ctx context.Context, p playlist.Playlist, songIDs []string) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var owner any
	if p.OwnerID != "" {
		owner = p.OwnerID
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO playlists (id, name, cover_url, owner_id, likes, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			p.ID, p.Name, p.CoverURL, owner, p.Likes, createdAt)
		if isUniqueViolation(err) {
			return errors.Wrapf(ErrConflict, "playlist %s", p.ID)
		}
		if err != nil {
			return errors.Wrap(err, "failed to insert playlist")
		}

		for i, songID := range songIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)",
				p.ID, songID, i); err != nil {
				if isForeignKeyViolation(err) {
					return errors.Wrapf(ErrInvalidReference, "song %s", songID)
				}
				return errors.Wrapf(err, "failed to add song %s to playlist", songID)
			}
		}
		return nil
	})
}

func (s *Store) queryPlaylists(ctx context.Context, query string, args ...any) ([]playlist.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playlists")
	}

	playlists := make([]playlist.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan playlist")
		}
		playlists = append(playlists, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate playlists")
	}

	// Songs are loaded after the cursor is closed; in-memory databases
	// have a single connection.
	for i := range playlists {
		if playlists[i].Tracks, err = s.playlistSongs(ctx, playlists[i].ID); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

func (s *Store) playlistSongs(ctx context.Context, playlistID string) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+songColumns+songFrom+`
		JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = ?
		ORDER BY ps.position`, playlistID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list playlist songs")
	}
	return collectSongs(rows)
}
