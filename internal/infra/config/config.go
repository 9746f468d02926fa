// Package config provides configuration loading from YAML or TOML files.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server" toml:"server"`
	Storage  StorageConfig           `yaml:"storage" toml:"storage"`
	Playback PlaybackConfig          `yaml:"playback" toml:"playback"`
	Auth     AuthConfig              `yaml:"auth" toml:"auth"`
	Upload   UploadConfig            `yaml:"upload" toml:"upload"`
	Filters  map[string]FilterConfig `yaml:"filters" toml:"filters"`
	Messages MessagesConfig          `yaml:"messages" toml:"messages"`
	Spotify  SpotifyConfig           `yaml:"spotify" toml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr              string `yaml:"addr" toml:"addr" default:":8080"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" default:"10000" validate:"gte=0"`
}

// StorageConfig represents catalog storage configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" toml:"database_path" default:"data/melodia.db" validate:"required"`
	MediaDir     string `yaml:"media_dir" toml:"media_dir" default:"data/media" validate:"required"`
	Seed         *bool  `yaml:"seed" toml:"seed" default:"true"`
}

// PlaybackConfig represents playback controller configuration.
type PlaybackConfig struct {
	InitialVolume   *float64     `yaml:"initial_volume" toml:"initial_volume" default:"0.75" validate:"gte=0,lte=1"`
	EventBufferSize int          `yaml:"event_buffer_size" toml:"event_buffer_size" default:"64" validate:"gte=1,lte=4096"`
	Driver          DriverConfig `yaml:"driver" toml:"driver"`
}

// DriverConfig selects the media driver and its settings.
type DriverConfig struct {
	Type     string         `yaml:"type" toml:"type" default:"clock" validate:"oneof=clock"`
	Settings map[string]any `yaml:"settings" toml:"settings"`
}

// AuthConfig represents account and token configuration.
type AuthConfig struct {
	BcryptCost       int     `yaml:"bcrypt_cost" toml:"bcrypt_cost" default:"10" validate:"gte=4,lte=31"`
	LoginRatePerSec  float64 `yaml:"login_rate_per_sec" toml:"login_rate_per_sec" default:"1" validate:"gt=0"`
	LoginBurst       int     `yaml:"login_burst" toml:"login_burst" default:"5" validate:"gte=1"`
	MinPasswordChars int     `yaml:"min_password_chars" toml:"min_password_chars" default:"1" validate:"gte=1"`
	DemoPassword     string  `yaml:"demo_password" toml:"demo_password"` // Password of the seeded demo user; empty disables its login
}

// UploadConfig represents upload endpoint configuration.
type UploadConfig struct {
	MaxRequestMB int64 `yaml:"max_request_mb" toml:"max_request_mb" default:"64" validate:"gte=1"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled" toml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty" toml:"settings"`
}

// MessagesConfig represents user-facing messages for upload rejections.
type MessagesConfig struct {
	Success               string `yaml:"success" toml:"success" default:"Upload accepted"`
	DefaultError          string `yaml:"default_error" toml:"default_error" default:"Upload rejected"`
	UnsupportedFormat     string `yaml:"unsupported_format" toml:"unsupported_format" default:"Unsupported audio format"`
	FileTooLarge          string `yaml:"file_too_large" toml:"file_too_large" default:"File is too large"`
	DurationLimitExceeded string `yaml:"duration_limit_exceeded" toml:"duration_limit_exceeded" default:"Track duration is out of the allowed range"`
	DuplicateTrack        string `yaml:"duplicate_track" toml:"duplicate_track" default:"This song is already in the catalog"`
	Internal              string `yaml:"internal" toml:"internal" default:"Upload failed, please try again later"`
}

// SpotifyConfig represents Spotify API configuration used by the importer.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" toml:"client_id"`
	ClientSecret string `yaml:"client_secret" toml:"client_secret"`
	Market       string `yaml:"market" toml:"market" validate:"omitempty,len=2" default:"US"`
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration data. ext selects the format (".toml" or YAML otherwise).
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	return &cfg
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("MELODIA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MELODIA_DATABASE"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("MELODIA_MEDIA_DIR"); v != "" {
		c.Storage.MediaDir = v
	}
	if v := os.Getenv("MELODIA_DEMO_PASSWORD"); v != "" {
		c.Auth.DemoPassword = v
	}
	if v := os.Getenv("MELODIA_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Storage.Seed = &b
		}
	}
}

// GetMessage returns the message for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "success":
		return c.Messages.Success
	case "unsupported_format":
		return c.Messages.UnsupportedFormat
	case "file_too_large":
		return c.Messages.FileTooLarge
	case "duration_limit_exceeded":
		return c.Messages.DurationLimitExceeded
	case "duplicate_track":
		return c.Messages.DuplicateTrack
	case "internal":
		return c.Messages.Internal
	default:
		return c.Messages.DefaultError
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// ShouldSeed reports whether the demo catalog should be seeded into an empty database.
func (c *Config) ShouldSeed() bool {
	return c.Storage.Seed == nil || *c.Storage.Seed
}

// HasSpotifyCredentials reports whether the importer can authenticate.
func (c *Config) HasSpotifyCredentials() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// GetFilterSettings returns the settings for a filter.
func (c *Config) GetFilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}
