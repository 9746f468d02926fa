package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceProber_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok.mp3":
			w.WriteHeader(http.StatusOK)
		case "/broken.mp3":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p := NewSourceProber(t.TempDir(), time.Second)

	tests := []struct {
		name    string
		source  string
		wantErr error
	}{
		{name: "available", source: server.URL + "/ok.mp3"},
		{name: "missing", source: server.URL + "/missing.mp3", wantErr: ErrSourceNotFound},
		{name: "server error", source: server.URL + "/broken.mp3", wantErr: ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := p.Probe(context.Background(), tt.source)
			assert.Equal(t, time.Duration(0), d)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSourceProber_Local(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.mp3"), []byte("ID3"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	p := NewSourceProber(dir, time.Second)

	_, err := p.Probe(context.Background(), "song.mp3")
	assert.NoError(t, err)

	_, err = p.Probe(context.Background(), "/media/song.mp3")
	assert.NoError(t, err)

	_, err = p.Probe(context.Background(), "nope.mp3")
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	_, err = p.Probe(context.Background(), "sub")
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	_, err = p.Probe(context.Background(), "")
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestResolveLocal(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "a.mp3"), ResolveLocal("/data", "a.mp3"))
	assert.Equal(t, filepath.Join("/data", "a.mp3"), ResolveLocal("/data", "../../etc/a.mp3"))
	assert.Equal(t, filepath.Join("/data", "a.mp3"), ResolveLocal("/data", "/media/a.mp3"))
}
