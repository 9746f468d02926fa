package store

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/osa030/melodia/internal/domain/track"
)

func scanArtist(row rowScanner) (track.Artist, error) {
	var a track.Artist
	err := row.Scan(&a.ID, &a.Name, &a.AvatarURL, &a.Followers)
	return a, err
}

// ListArtists returns all artists ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]track.Artist, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, avatar_url, followers FROM artists ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artists")
	}
	defer rows.Close()

	artists := make([]track.Artist, 0)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan artist")
		}
		artists = append(artists, a)
	}
	return artists, errors.Wrap(rows.Err(), "failed to iterate artists")
}

// GetArtist returns the artist with the given ID.
func (s *Store) GetArtist(ctx context.Context, id string) (track.Artist, error) {
	a, err := scanArtist(s.db.QueryRowContext(ctx, "SELECT id, name, avatar_url, followers FROM artists WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return track.Artist{}, errors.Wrapf(ErrNotFound, "artist %s", id)
	}
	if err != nil {
		return track.Artist{}, errors.Wrap(err, "failed to get artist")
	}
	return a, nil
}

// ensureArtist returns the stored artist matching a.ID, or a.Name ignoring
// case, inserting a when neither exists.
func ensureArtist(ctx context.Context, q queryer, a track.Artist) (track.Artist, error) {
	if a.ID != "" {
		existing, err := scanArtist(q.QueryRowContext(ctx,
			"SELECT id, name, avatar_url, followers FROM artists WHERE id = ?", a.ID))
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return track.Artist{}, errors.Wrap(err, "failed to look up artist")
		}
	}

	existing, err := scanArtist(q.QueryRowContext(ctx,
		"SELECT id, name, avatar_url, followers FROM artists WHERE name = ? COLLATE NOCASE", a.Name))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return track.Artist{}, errors.Wrap(err, "failed to look up artist")
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if _, err := q.ExecContext(ctx,
		"INSERT INTO artists (id, name, avatar_url, followers) VALUES (?, ?, ?, ?)",
		a.ID, a.Name, a.AvatarURL, a.Followers); err != nil {
		return track.Artist{}, errors.Wrap(err, "failed to insert artist")
	}
	return a, nil
}
