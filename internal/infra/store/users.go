package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/domain/user"
)

const userColumns = `id, username, email, password_hash, avatar_url, cover_url, bio,
	followers, following, total_plays, created_at`

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.CoverURL, &u.Bio,
		&u.Followers, &u.Following, &u.TotalPlays, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a user. A taken email returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, avatar_url, cover_url, bio,
			followers, following, total_plays, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.AvatarURL, u.CoverURL, u.Bio,
		u.Followers, u.Following, u.TotalPlays, u.CreatedAt)
	if isUniqueViolation(err) {
		return errors.Wrapf(ErrConflict, "email %s", u.Email)
	}
	return errors.Wrap(err, "failed to insert user")
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail returns the user with the given normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.getUser(ctx, "email", user.NormalizeEmail(email))
}

func (s *Store) getUser(ctx context.Context, column, value string) (user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value))
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, errors.Wrapf(ErrNotFound, "user %s", value)
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get user")
	}
	return u, nil
}

// UpdateProfile stores the editable profile fields of u.
func (s *Store) UpdateProfile(ctx context.Context, u user.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, bio = ?, avatar_url = ?, cover_url = ? WHERE id = ?",
		u.Username, u.Bio, u.AvatarURL, u.CoverURL, u.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "user %s", u.ID)
	}
	return nil
}

// LikeSong records that a user likes a song and bumps the song's like count.
// Liking an already liked song is a no-op.
func (s *Store) LikeSong(ctx context.Context, userID, songID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs WHERE id = ?", songID).Scan(&exists); err != nil {
			return errors.Wrap(err, "failed to look up song")
		}
		if exists == 0 {
			return errors.Wrapf(ErrNotFound, "song %s", songID)
		}

		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO liked_songs (user_id, song_id, liked_at) VALUES (?, ?, ?)",
			userID, songID, time.Now())
		if err != nil {
			return errors.Wrap(err, "failed to like song")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, "UPDATE songs SET likes = likes + 1 WHERE id = ?", songID)
		return errors.Wrap(err, "failed to update like count")
	})
}

// UnlikeSong removes a like. Unliking a song that is not liked is a no-op.
func (s *Store) UnlikeSong(ctx context.Context, userID, songID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM liked_songs WHERE user_id = ? AND song_id = ?", userID, songID)
		if err != nil {
			return errors.Wrap(err, "failed to unlike song")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, "UPDATE songs SET likes = MAX(likes - 1, 0) WHERE id = ?", songID)
		return errors.Wrap(err, "failed to update like count")
	})
}

// LikedSongs returns the songs a user liked, most recent first.
func (s *Store) LikedSongs(ctx context.Context, userID string) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+songColumns+songFrom+`
		JOIN liked_songs l ON l.song_id = s.id
		WHERE l.user_id = ?
		ORDER BY l.liked_at DESC, s.id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list liked songs")
	}
	return collectSongs(rows)
}
