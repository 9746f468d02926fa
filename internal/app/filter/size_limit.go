package filter

import (
	"context"
)

// SizeLimitConfig represents the configuration for SizeLimitFilter.
type SizeLimitConfig struct {
	MaxMB float64 `yaml:"max_mb" mapstructure:"max_mb" default:"20" validate:"gt=0"`
}

// SizeLimitFilter rejects files larger than the configured size.
type SizeLimitFilter struct {
	maxBytes int64
}

func (f *SizeLimitFilter) Name() string {
	return "size_limit_filter"
}

func (f *SizeLimitFilter) Description() string {
	return "Rejects files larger than max_mb megabytes"
}

func (f *SizeLimitFilter) ReturnCodes() []string {
	return []string{"file_too_large"}
}

func (f *SizeLimitFilter) ValidateConfig(settings map[string]any) error {
	var config SizeLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.maxBytes = int64(config.MaxMB * 1024 * 1024)
	return nil
}

func (f *SizeLimitFilter) Check(ctx context.Context, u Upload) Result {
	// Unconfigured filter accepts everything
	if f.maxBytes <= 0 {
		return Accept()
	}
	if u.Size > f.maxBytes {
		return Reject("file_too_large")
	}
	return Accept()
}

func init() {
	Register("size_limit_filter", func() Filter {
		return &SizeLimitFilter{}
	})
}
