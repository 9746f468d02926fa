package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/melodia/internal/domain/track"
)

const songColumns = `
	s.id, s.title, s.cover_url, s.audio_url, s.duration_ms, s.plays, s.likes, s.created_at,
	a.id, a.name, a.avatar_url, a.followers`

const songFrom = `
	FROM songs s
	JOIN artists a ON a.id = s.artist_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (track.Track, error) {
	var (
		t          track.Track
		durationMs int64
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.CoverURL, &t.AudioURL, &durationMs, &t.Plays, &t.Likes, &t.CreatedAt,
		&t.Artist.ID, &t.Artist.Name, &t.Artist.AvatarURL, &t.Artist.Followers,
	)
	if err != nil {
		return track.Track{}, err
	}
	t.Duration = time.Duration(durationMs) * time.Millisecond
	return t, nil
}

func collectSongs(rows *sql.Rows) ([]track.Track, error) {
	defer rows.Close()

	songs := make([]track.Track, 0)
	for rows.Next() {
		t, err := scanSong(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan song")
		}
		songs = append(songs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate songs")
	}
	return songs, nil
}

// ListSongs returns all songs, newest first.
func (s *Store) ListSongs(ctx context.Context) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT"+songColumns+songFrom+" ORDER BY s.created_at DESC, s.id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list songs")
	}
	return collectSongs(rows)
}

// GetSong returns the song with the given ID.
func (s *Store) GetSong(ctx context.Context, id string) (track.Track, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+songColumns+songFrom+" WHERE s.id = ?", id)
	t, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return track.Track{}, errors.Wrapf(ErrNotFound, "song %s", id)
	}
	if err != nil {
		return track.Track{}, errors.Wrap(err, "failed to get song")
	}
	return t, nil
}

// GetSongs returns the songs with the given IDs in the given order.
// Unknown IDs are skipped.
func (s *Store) GetSongs(ctx context.Context, ids []string) ([]track.Track, error) {
	if len(ids) == 0 {
		return []track.Track{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, "SELECT"+songColumns+songFrom+" WHERE s.id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get songs")
	}
	found, err := collectSongs(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]track.Track, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	songs := make([]track.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			songs = append(songs, t)
		}
	}
	return songs, nil
}

// SongsByArtist returns the songs of an artist, newest first.
func (s *Store) SongsByArtist(ctx context.Context, artistID string) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+songColumns+songFrom+" WHERE s.artist_id = ? ORDER BY s.created_at DESC, s.id", artistID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artist songs")
	}
	return collectSongs(rows)
}

// FindSong returns the songs whose title and artist name equal the given
// values, ignoring case.
func (s *Store) FindSong(ctx context.Context, title, artistName string) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+songColumns+songFrom+" WHERE s.title = ? COLLATE NOCASE AND a.name = ? COLLATE NOCASE",
		title, artistName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find song")
	}
	return collectSongs(rows)
}

// SongsByArtistName returns all songs whose artist name equals name, ignoring case.
func (s *Store) SongsByArtistName(ctx context.Context, name string) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+songColumns+songFrom+" WHERE a.name = ? COLLATE NOCASE ORDER BY s.created_at DESC, s.id", name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list songs by artist name")
	}
	return collectSongs(rows)
}

// InsertSong inserts a song. The artist is created by name when it does not
// exist yet; t.Artist is updated with the stored artist.
func (s *Store) InsertSong(ctx context.Context, t *track.Track) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		artist, err := ensureArtist(ctx, tx, t.Artist)
		if err != nil {
			return err
		}
		t.Artist = artist
		return insertSong(ctx, tx, *t)
	})
}

func insertSong(ctx context.Context, q queryer, t track.Track) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist_id, cover_url, audio_url, duration_ms, plays, likes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Artist.ID, t.CoverURL, t.AudioURL, t.Duration.Milliseconds(), t.Plays, t.Likes, createdAt,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(ErrConflict, "song %s", t.ID)
	}
	return errors.Wrap(err, "failed to insert song")
}

// IncrementPlays adds one to the play count of a song.
func (s *Store) IncrementPlays(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE songs SET plays = plays + 1 WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to increment plays")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "song %s", id)
	}
	return nil
}

// CountSongs returns the number of songs in the catalog.
func (s *Store) CountSongs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count songs")
	}
	return n, nil
}
