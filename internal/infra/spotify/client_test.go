package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Spotify URL with query params",
			input:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Plain playlist ID",
			input:    "37i9dQZF1DXcBWIGoYBM5M",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "HTTP URL (not HTTPS)",
			input:    "http://open.spotify.com/playlist/testID",
			expected: "testID",
		},
		{
			name:     "Localized URL",
			input:    "https://open.spotify.com/intl-pt/playlist/abc123/",
			expected: "abc123",
		},
		{
			name:     "URL with multiple query params",
			input:    "https://open.spotify.com/playlist/abc123?si=xyz&utm_source=copy",
			expected: "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractPlaylistID(tt.input)
			assert.Equal(t, tt.expected, result,
				"extractPlaylistID(%s) should return %s", tt.input, tt.expected)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rate limit error with 429",
			err:      errors.New("Error 429: rate limit exceeded"),
			expected: true,
		},
		{
			name:     "rate limit text",
			err:      errors.New("rate limit exceeded"),
			expected: true,
		},
		{
			name:     "server error 500",
			err:      errors.New("Error 500: internal server error"),
			expected: true,
		},
		{
			name:     "server error 502",
			err:      errors.New("502 Bad Gateway"),
			expected: true,
		},
		{
			name:     "server error 503",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "server error 504",
			err:      errors.New("504 Gateway Timeout"),
			expected: true,
		},
		{
			name:     "client error 400",
			err:      errors.New("400 Bad Request"),
			expected: false,
		},
		{
			name:     "not found error",
			err:      errors.New("404 not found"),
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func newFakeSpotify(t *testing.T) *httptest.Server {
	t.Helper()

	item := func(id, name, preview string) map[string]any {
		return map[string]any{"track": map[string]any{
			"type":        "track",
			"id":          id,
			"name":        name,
			"duration_ms": 30000,
			"preview_url": preview,
			"artists":     []map[string]any{{"id": "ar1", "name": "Lagoa"}},
			"album": map[string]any{
				"name":   "Mar",
				"images": []map[string]any{{"url": "https://img.example.com/" + id}},
			},
		}}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/playlists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		path := strings.TrimPrefix(r.URL.Path, "/playlists/")
		if path == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":404,"message":"Not found"}}`))
			return
		}
		if strings.HasSuffix(path, "/tracks") || strings.HasSuffix(path, "/items") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total": 3,
				"items": []map[string]any{
					item("t1", "Onda", "https://p.example.com/t1.mp3"),
					item("t2", "Sem Prévia", ""),
					item("t3", "Brisa", "https://p.example.com/t3.mp3"),
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     path,
			"name":   "Praia",
			"images": []map[string]any{{"url": "https://img.example.com/cover"}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestClient_FetchPlaylist(t *testing.T) {
	srv := newFakeSpotify(t)
	ctx := context.Background()

	c, err := New(ctx, Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
		APIURL:       srv.URL,
	})
	require.NoError(t, err)
	c.retryDelay = time.Millisecond

	p, skipped, err := c.FetchPlaylist(ctx, "https://open.spotify.com/playlist/pl1?si=x")
	require.NoError(t, err)
	assert.Equal(t, IDPrefix+"pl1", p.ID)
	assert.Equal(t, "Praia", p.Name)
	assert.Equal(t, "https://img.example.com/cover", p.CoverURL)
	assert.Equal(t, 1, skipped)

	require.Len(t, p.Tracks, 2)
	first := p.Tracks[0]
	assert.Equal(t, IDPrefix+"t1", first.ID)
	assert.Equal(t, "Onda", first.Title)
	assert.Equal(t, "Lagoa", first.Artist.Name)
	assert.Equal(t, IDPrefix+"ar1", first.Artist.ID)
	assert.Equal(t, "https://p.example.com/t1.mp3", first.AudioURL)
	assert.Equal(t, "https://img.example.com/t1", first.CoverURL)
	assert.Equal(t, 30*time.Second, first.Duration)

	_, _, err = c.FetchPlaylist(ctx, "spotify:playlist:missing")
	assert.Error(t, err)

	_, _, err = c.FetchPlaylist(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidPlaylistURL)
}
