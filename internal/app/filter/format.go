package filter

import (
	"context"
	"slices"
	"strings"
)

// FormatConfig represents the configuration for FormatFilter.
type FormatConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions" default:"[\".mp3\",\".m4a\",\".flac\",\".ogg\",\".wav\"]" validate:"min=1,dive,startswith=."`
}

// FormatFilter accepts only files with an allowed extension.
type FormatFilter struct {
	extensions []string
}

// NewFormatFilter creates a format filter with the default extensions.
func NewFormatFilter() *FormatFilter {
	f := &FormatFilter{}
	_ = f.ValidateConfig(nil)
	return f
}

func (f *FormatFilter) Name() string {
	return "format_filter"
}

func (f *FormatFilter) Description() string {
	return "Accepts only audio files with an allowed extension"
}

func (f *FormatFilter) ReturnCodes() []string {
	return []string{"unsupported_format"}
}

func (f *FormatFilter) ValidateConfig(settings map[string]any) error {
	var config FormatConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	f.extensions = make([]string, len(config.Extensions))
	for i, ext := range config.Extensions {
		f.extensions[i] = strings.ToLower(ext)
	}
	return nil
}

func (f *FormatFilter) Check(ctx context.Context, u Upload) Result {
	if !slices.Contains(f.extensions, u.Ext()) {
		return Reject("unsupported_format")
	}
	return Accept()
}

func init() {
	Register("format_filter", func() Filter {
		return &FormatFilter{}
	})
}
