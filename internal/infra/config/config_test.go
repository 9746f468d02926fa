package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
server:
  addr: ":9090"
storage:
  database_path: /tmp/melodia.db
  media_dir: /tmp/media
  seed: false
playback:
  initial_volume: 0.5
  driver:
    type: clock
    settings:
      tick_ms: 100
filters:
  format_filter:
    enabled: true
    settings:
      extensions: [".mp3", ".flac"]
  size_limit_filter:
    enabled: false
spotify:
  client_id: file-id
  client_secret: file-secret
`

const tomlConfig = `
[server]
addr = ":7070"

[playback]
initial_volume = 0.25

[auth]
bcrypt_cost = 12

[filters.duration_limit_filter]
enabled = true

[filters.duration_limit_filter.settings]
min_minutes = 1
max_minutes = 10
`

func TestParse_YAML(t *testing.T) {
	cfg, err := Parse([]byte(yamlConfig), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/melodia.db", cfg.Storage.DatabasePath)
	assert.False(t, cfg.ShouldSeed())
	assert.Equal(t, 0.5, *cfg.Playback.InitialVolume)
	assert.Equal(t, "clock", cfg.Playback.Driver.Type)
	assert.Equal(t, 100, cfg.Playback.Driver.Settings["tick_ms"])

	assert.True(t, cfg.IsFilterEnabled("format_filter"))
	assert.False(t, cfg.IsFilterEnabled("size_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("unknown_filter"))
	assert.NotNil(t, cfg.GetFilterSettings("format_filter"))
	assert.Nil(t, cfg.GetFilterSettings("unknown_filter"))

	assert.True(t, cfg.HasSpotifyCredentials())
}

func TestParse_TOML(t *testing.T) {
	cfg, err := Parse([]byte(tomlConfig), ".toml")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 0.25, *cfg.Playback.InitialVolume)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.Equal(t, int64(10), cfg.GetFilterSettings("duration_limit_filter")["max_minutes"])
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/melodia.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "data/media", cfg.Storage.MediaDir)
	assert.True(t, cfg.ShouldSeed())
	assert.Equal(t, 0.75, *cfg.Playback.InitialVolume)
	assert.Equal(t, 64, cfg.Playback.EventBufferSize)
	assert.Equal(t, "clock", cfg.Playback.Driver.Type)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.False(t, cfg.HasSpotifyCredentials())
	assert.Equal(t, "Upload rejected", cfg.Messages.DefaultError)
}

func TestParse_MutedVolume(t *testing.T) {
	cfg, err := Parse([]byte("playback:\n  initial_volume: 0\n"), ".yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg.Playback.InitialVolume)
	assert.Equal(t, 0.0, *cfg.Playback.InitialVolume)

	cfg, err = Parse([]byte("[playback]\ninitial_volume = 0.0\n"), ".toml")
	require.NoError(t, err)
	assert.Equal(t, 0.0, *cfg.Playback.InitialVolume)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "volume out of range", data: "playback:\n  initial_volume: 1.5\n"},
		{name: "unknown driver", data: "playback:\n  driver:\n    type: vlc\n"},
		{name: "bad market", data: "spotify:\n  market: USA\n"},
		{name: "bcrypt cost too low", data: "auth:\n  bcrypt_cost: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".yml")
			assert.Error(t, err)
		})
	}
}

func TestParse_InvalidSyntax(t *testing.T) {
	_, err := Parse([]byte("server: [unclosed"), ".yaml")
	assert.Error(t, err)

	_, err = Parse([]byte("[server\naddr ="), ".toml")
	assert.Error(t, err)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("MELODIA_ADDR", ":1234")
	t.Setenv("MELODIA_SEED", "false")
	t.Setenv("MELODIA_DEMO_PASSWORD", "demo")

	cfg, err := Parse([]byte(yamlConfig), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.False(t, cfg.ShouldSeed())
	assert.Equal(t, "demo", cfg.Auth.DemoPassword)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_GetMessage(t *testing.T) {
	cfg := Default()

	assert.Equal(t, cfg.Messages.DuplicateTrack, cfg.GetMessage("duplicate_track"))
	assert.Equal(t, cfg.Messages.FileTooLarge, cfg.GetMessage("file_too_large"))
	assert.Equal(t, cfg.Messages.Internal, cfg.GetMessage("internal"))
	assert.Equal(t, cfg.Messages.DefaultError, cfg.GetMessage("something_else"))
}

func TestLoad_Examples(t *testing.T) {
	for _, name := range []string{"server.example.yaml", "server.example.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("..", "..", "..", "config", name))
			require.NoError(t, err)
			assert.Equal(t, "clock", cfg.Playback.Driver.Type)
			assert.Equal(t, 8, cfg.Auth.MinPasswordChars)
			assert.True(t, cfg.IsFilterEnabled("duplicate_track_filter"))
			assert.EqualValues(t, 20, cfg.GetFilterSettings("size_limit_filter")["max_mb"])
		})
	}
}
