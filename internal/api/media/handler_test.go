package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/filter"
	"github.com/osa030/melodia/internal/infra/config"
	"github.com/osa030/melodia/internal/infra/store"
)

type staticAuth map[string]string

func (a staticAuth) Authenticate(token string) (string, error) {
	if id, ok := a[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

type fixture struct {
	server   *httptest.Server
	store    *store.Store
	mediaDir string
}

func newFixture(t *testing.T, maxRequestBytes int64) *fixture {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Seed(ctx, ""))

	chain, err := filter.BuildChain(map[string]filter.Settings{
		"format_filter":                 {Enabled: true},
		"size_limit_filter":             {Enabled: true, Settings: map[string]any{"max_mb": 1}},
		filter.DuplicateTrackFilterName: {Enabled: true},
	}, s)
	require.NoError(t, err)

	dir := t.TempDir()
	h := NewHandler(Config{MediaDir: dir, MaxRequestBytes: maxRequestBytes},
		staticAuth{"good": "1"}, chain, s, config.Default())

	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, store: s, mediaDir: dir}
}

func (f *fixture) upload(t *testing.T, token, fileName string, content []byte, fields map[string]string) (int, rpc.UploadResponse) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.server.URL+UploadPath, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set(rpc.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res rpc.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp.StatusCode, res
}

func TestUpload_Accepted(t *testing.T) {
	f := newFixture(t, 0)
	content := []byte("not really audio")

	status, res := f.upload(t, "good", "night-drive.mp3", content, map[string]string{
		"title":            "Night Drive",
		"artist":           "maria santos",
		"duration_seconds": "201.5",
		"cover_url":        "https://example.com/cover.jpg",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, res.Success)
	assert.Equal(t, "Upload accepted", res.Message)
	require.NotNil(t, res.Song)
	assert.Equal(t, "Night Drive", res.Song.Title)
	assert.Equal(t, "1", res.Song.Artist.ID, "existing artist is reused")
	assert.Equal(t, int64(201), res.Song.DurationSeconds)
	assert.Equal(t, res.Song.ID+".mp3", res.Song.AudioURL)

	stored, err := os.ReadFile(filepath.Join(f.mediaDir, res.Song.AudioURL))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	song, err := f.store.GetSong(context.Background(), res.Song.ID)
	require.NoError(t, err)
	assert.Equal(t, 201500*time.Millisecond, song.Duration)

	resp, err := f.server.Client().Get(f.server.URL + FilesPrefix + res.Song.AudioURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, served)
}

func TestUpload_DefaultsFromFileName(t *testing.T) {
	f := newFixture(t, 0)

	status, res := f.upload(t, "good", "Rainy Day.flac", []byte("x"), nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Rainy Day", res.Song.Title)
	assert.Equal(t, UnknownArtist, res.Song.Artist.Name)
}

func TestUpload_Rejected(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		name       string
		token      string
		fileName   string
		content    []byte
		fields     map[string]string
		wantStatus int
		wantCode   string
	}{
		{name: "no token", fileName: "a.mp3", content: []byte("x"), wantStatus: http.StatusUnauthorized, wantCode: "unauthenticated"},
		{name: "bad token", token: "bad", fileName: "a.mp3", content: []byte("x"), wantStatus: http.StatusUnauthorized, wantCode: "unauthenticated"},
		{name: "missing file", token: "good", wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "bad duration", token: "good", fileName: "a.mp3", content: []byte("x"), fields: map[string]string{"duration_seconds": "soon"}, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "bad duration nan", token: "good", fileName: "a.mp3", content: []byte("x"), fields: map[string]string{"duration_seconds": "NaN"}, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "bad duration inf", token: "good", fileName: "a.mp3", content: []byte("x"), fields: map[string]string{"duration_seconds": "Inf"}, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "bad duration negative", token: "good", fileName: "a.mp3", content: []byte("x"), fields: map[string]string{"duration_seconds": "-3"}, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "bad duration overflow", token: "good", fileName: "a.mp3", content: []byte("x"), fields: map[string]string{"duration_seconds": "1e300"}, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "format", token: "good", fileName: "notes.txt", content: []byte("x"), wantStatus: http.StatusUnprocessableEntity, wantCode: "unsupported_format"},
		{name: "size", token: "good", fileName: "big.mp3", content: bytes.Repeat([]byte{1}, 2<<20), wantStatus: http.StatusUnprocessableEntity, wantCode: "file_too_large"},
		{
			name: "duplicate", token: "good", fileName: "dup.mp3", content: []byte("x"),
			fields:     map[string]string{"title": "Ocean Waves (Live)", "artist": "Pedro Costa"},
			wantStatus: http.StatusUnprocessableEntity, wantCode: "duplicate_track",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := f.upload(t, tt.token, tt.fileName, tt.content, tt.fields)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.NotEmpty(t, res.Message)
		})
	}

	n, err := f.store.CountSongs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpload_RequestTooLarge(t *testing.T) {
	f := newFixture(t, 1024)

	status, res := f.upload(t, "good", "a.mp3", bytes.Repeat([]byte{1}, 4096), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "file_too_large", res.Code)
}

func TestServe(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, os.WriteFile(filepath.Join(f.mediaDir, "song.mp3"), []byte("0123456789"), 0o644))

	req, err := http.NewRequest(http.MethodGet, f.server.URL+FilesPrefix+"song.mp3", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=2-5")
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(body))

	for _, path := range []string{"missing.mp3", ".hidden", "..%2Fsecret"} {
		resp, err := f.server.Client().Get(f.server.URL + FilesPrefix + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}
