package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/domain/user"
)

// DemoUserEmail is the login of the seeded demo account.
const DemoUserEmail = "joao@example.com"

type seedPlaylist struct {
	playlist playlist.Playlist
	songIDs  []string
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

var (
	seedArtists = []track.Artist{
		{ID: "1", Name: "Maria Santos", AvatarURL: "https://i.pravatar.cc/150?img=2", Followers: 5678},
		{ID: "2", Name: "Pedro Costa", AvatarURL: "https://i.pravatar.cc/150?img=3", Followers: 3456},
		{ID: "3", Name: "João Silva", AvatarURL: "https://i.pravatar.cc/150?img=1", Followers: 1234},
	}

	seedSongs = []track.Track{
		{
			ID: "1", Title: "Summer Vibes", Artist: seedArtists[2],
			CoverURL:  "https://source.unsplash.com/random/300x300?music,1",
			AudioURL:  "https://example.com/summer-vibes.mp3",
			Duration:  180 * time.Second,
			Plays:     12345,
			Likes:     789,
			CreatedAt: day("2024-03-15"),
		},
		{
			ID: "2", Title: "Midnight Dreams", Artist: seedArtists[0],
			CoverURL:  "https://source.unsplash.com/random/300x300?music,2",
			AudioURL:  "https://example.com/midnight-dreams.mp3",
			Duration:  240 * time.Second,
			Plays:     8765,
			Likes:     432,
			CreatedAt: day("2024-03-14"),
		},
		{
			ID: "3", Title: "Ocean Waves", Artist: seedArtists[1],
			CoverURL:  "https://source.unsplash.com/random/300x300?music,3",
			AudioURL:  "https://example.com/ocean-waves.mp3",
			Duration:  210 * time.Second,
			Plays:     5432,
			Likes:     321,
			CreatedAt: day("2024-03-13"),
		},
	}

	seedUser = user.User{
		ID:         "1",
		Username:   "joaosilva",
		Email:      DemoUserEmail,
		AvatarURL:  "https://i.pravatar.cc/150?img=1",
		CoverURL:   "https://source.unsplash.com/random/1200x400?music",
		Bio:        "Produtor musical e DJ apaixonado por música eletrônica.",
		Followers:  1234,
		Following:  567,
		TotalPlays: 45678,
		CreatedAt:  day("2024-01-01"),
	}

	seedPlaylists = []seedPlaylist{
		{
			playlist: playlist.Playlist{
				ID: "1", Name: "Chill Vibes", OwnerID: "1", Likes: 123,
				CoverURL:  "https://source.unsplash.com/random/300x300?playlist,1",
				CreatedAt: day("2024-01-01"),
			},
			songIDs: []string{"1", "2"},
		},
		{
			playlist: playlist.Playlist{
				ID: "2", Name: "Workout Mix", OwnerID: "1", Likes: 456,
				CoverURL:  "https://source.unsplash.com/random/300x300?playlist,2",
				CreatedAt: day("2024-02-01"),
			},
			songIDs: []string{"1", "3"},
		},
	}
)

// Seed fills an empty catalog with the demo dataset. When demoPasswordHash
// is not empty the demo account is created with it and likes "Midnight
// Dreams". A catalog that already has songs is left untouched.
func (s *Store) Seed(ctx context.Context, demoPasswordHash string) error {
	n, err := s.CountSongs(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		zlog.Debug().Msgf("store: seed skipped: songs=%d", n)
		return nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range seedArtists {
			if _, err := ensureArtist(ctx, tx, a); err != nil {
				return err
			}
		}
		for _, t := range seedSongs {
			if err := insertSong(ctx, tx, t); err != nil {
				return err
			}
		}
		for _, sp := range seedPlaylists {
			p := sp.playlist
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO playlists (id, name, cover_url, owner_id, likes, created_at) VALUES (?, ?, ?, ?, ?, ?)",
				p.ID, p.Name, p.CoverURL, p.OwnerID, p.Likes, p.CreatedAt); err != nil {
				return errors.Wrap(err, "failed to seed playlist")
			}
			for i, id := range sp.songIDs {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)",
					p.ID, id, i); err != nil {
					return errors.Wrap(err, "failed to seed playlist song")
				}
			}
		}

		if demoPasswordHash == "" {
			return nil
		}
		u := seedUser
		u.PasswordHash = demoPasswordHash
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO users (id, username, email, password_hash, avatar_url, cover_url, bio,
				followers, following, total_plays, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.AvatarURL, u.CoverURL, u.Bio,
			u.Followers, u.Following, u.TotalPlays, u.CreatedAt); err != nil {
			return errors.Wrap(err, "failed to seed demo user")
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO liked_songs (user_id, song_id, liked_at) VALUES (?, ?, ?)",
			u.ID, "2", u.CreatedAt)
		return errors.Wrap(err, "failed to seed liked song")
	})
	if err != nil {
		return err
	}

	zlog.Info().Msgf("store: demo catalog seeded: songs=%d playlists=%d", len(seedSongs), len(seedPlaylists))
	return nil
}
