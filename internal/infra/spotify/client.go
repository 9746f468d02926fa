// Package spotify fetches public Spotify playlists for catalog import.
package spotify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
)

// IDPrefix is prepended to Spotify IDs to keep imported rows apart from local ones.
const IDPrefix = "spotify-"

var (
	ErrMissingCredentials = errors.New("spotify client id and secret are required")
	ErrInvalidPlaylistURL = errors.New("invalid playlist URL")
)

// Client is a Spotify Web API client authenticated with client credentials.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string

	// Overrides for tests; empty values use the public endpoints.
	TokenURL string
	APIURL   string
}

// New creates a new Spotify client. No request is made until the first call.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	var opts []spotify.ClientOption
	if cfg.APIURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimRight(cfg.APIURL, "/")+"/"))
	}

	market := cfg.Market
	if market == "" {
		market = "US"
	}

	return &Client{
		client:     spotify.New(creds.Client(ctx), opts...),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// FetchPlaylist loads a playlist and its tracks. Tracks without a preview
// URL cannot be played and are left out; skipped reports how many.
func (c *Client) FetchPlaylist(ctx context.Context, playlistURL string) (p playlist.Playlist, skipped int, err error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return playlist.Playlist{}, 0, ErrInvalidPlaylistURL
	}

	var full *spotify.FullPlaylist
	err = c.retry(ctx, func() error {
		res, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID), spotify.Market(c.market))
		if err != nil {
			return err
		}
		full = res
		return nil
	})
	if err != nil {
		return playlist.Playlist{}, 0, errors.Wrap(err, "failed to get playlist")
	}

	p = playlist.Playlist{
		ID:   IDPrefix + string(full.ID),
		Name: full.Name,
	}
	if len(full.Images) > 0 {
		p.CoverURL = full.Images[0].URL
	}

	offset := 0
	limit := 100
	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(ctx, func() error {
			res, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
				spotify.Limit(limit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = res
			return nil
		})
		if err != nil {
			return playlist.Playlist{}, 0, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// Episodes have no Track
			t := item.Track.Track
			if t == nil || t.ID == "" {
				continue
			}
			if t.PreviewURL == "" {
				skipped++
				continue
			}
			p.Tracks = append(p.Tracks, convertTrack(t))
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return p, skipped, nil
}

func convertTrack(t *spotify.FullTrack) track.Track {
	var artist track.Artist
	if len(t.Artists) > 0 {
		artist = track.Artist{
			ID:   IDPrefix + string(t.Artists[0].ID),
			Name: t.Artists[0].Name,
		}
	}

	var cover string
	if len(t.Album.Images) > 0 {
		cover = t.Album.Images[0].URL
	}

	return track.Track{
		ID:       IDPrefix + string(t.ID),
		Title:    t.Name,
		Artist:   artist,
		CoverURL: cover,
		AudioURL: t.PreviewURL,
		Duration: time.Duration(t.Duration) * time.Millisecond,
	}
}

func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == 429 || apiErr.Status >= 500
	}
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	// https://open.spotify.com/playlist/ID, optionally with /intl-xx/ and a query
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	return input
}
