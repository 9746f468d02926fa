package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// DurationLimitConfig represents the configuration for DurationLimitFilter.
type DurationLimitConfig struct {
	MinSeconds float64 `yaml:"min_seconds" mapstructure:"min_seconds" default:"1" validate:"gte=0"`
	MaxMinutes float64 `yaml:"max_minutes" mapstructure:"max_minutes" validate:"gte=0"`
}

// DurationLimitFilter checks if track duration is within allowed limits.
// Tracks whose duration could not be determined are rejected.
type DurationLimitFilter struct {
	config *DurationLimitConfig
}

// NewDurationLimitFilter creates a new duration limit filter.
func NewDurationLimitFilter() *DurationLimitFilter {
	return &DurationLimitFilter{}
}

func (f *DurationLimitFilter) Name() string {
	return "duration_limit_filter"
}

func (f *DurationLimitFilter) Description() string {
	return "Checks if track duration is within allowed limits"
}

func (f *DurationLimitFilter) ReturnCodes() []string {
	return []string{"duration_limit_exceeded"}
}

func (f *DurationLimitFilter) ValidateConfig(settings map[string]any) error {
	var config DurationLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	// max_minutes of 0 means no upper limit
	if config.MaxMinutes > 0 && config.MinSeconds > config.MaxMinutes*60 {
		return errors.New("min_seconds cannot be greater than max_minutes")
	}
	f.config = &config
	zlog.Debug().Msgf("filter: duration limit config: %+v", config)
	return nil
}

func (f *DurationLimitFilter) Check(ctx context.Context, u Upload) Result {
	// If config is not set, accept all tracks
	if f.config == nil {
		return Accept()
	}

	d := u.Track.Duration
	if d <= 0 {
		return Reject("duration_limit_exceeded")
	}
	if d.Seconds() < f.config.MinSeconds {
		return Reject("duration_limit_exceeded")
	}
	if f.config.MaxMinutes > 0 && d.Minutes() > f.config.MaxMinutes {
		return Reject("duration_limit_exceeded")
	}

	return Accept()
}

func init() {
	Register("duration_limit_filter", func() Filter {
		return &DurationLimitFilter{}
	})
}
