package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/melodia/internal/domain/track"
)

func TestDurationLimitFilter_Check(t *testing.T) {
	tests := []struct {
		name          string
		minSeconds    float64
		maxMinutes    float64
		trackDuration time.Duration
		shouldReject  bool
		description   string
	}{
		{
			name:          "Within limits",
			minSeconds:    30,
			maxMinutes:    5.0,
			trackDuration: 3 * time.Minute,
			shouldReject:  false,
			description:   "Should accept track within min/max limits",
		},
		{
			name:          "Too short",
			minSeconds:    60,
			maxMinutes:    0,
			trackDuration: 45 * time.Second,
			shouldReject:  true,
			description:   "Should reject track shorter than min",
		},
		{
			name:          "Too long",
			minSeconds:    1,
			maxMinutes:    5.0,
			trackDuration: 6 * time.Minute,
			shouldReject:  true,
			description:   "Should reject track longer than max",
		},
		{
			name:          "Exact min",
			minSeconds:    60,
			maxMinutes:    0,
			trackDuration: time.Minute,
			shouldReject:  false,
			description:   "Should accept track exactly at min",
		},
		{
			name:          "Exact max",
			minSeconds:    1,
			maxMinutes:    5.0,
			trackDuration: 5 * time.Minute,
			shouldReject:  false,
			description:   "Should accept track exactly at max",
		},
		{
			name:          "Unknown duration",
			minSeconds:    0,
			maxMinutes:    0,
			trackDuration: 0,
			shouldReject:  true,
			description:   "Should reject track without a duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			// Manually configuring for test by setting config directly
			f.config = &DurationLimitConfig{
				MinSeconds: tt.minSeconds,
				MaxMinutes: tt.maxMinutes,
			}

			result := f.Check(context.Background(), Upload{Track: track.Track{Duration: tt.trackDuration}})

			if tt.shouldReject {
				assert.False(t, result.Accepted, tt.description)
				assert.Equal(t, "duration_limit_exceeded", result.Code)
			} else {
				assert.True(t, result.Accepted, tt.description)
			}
		})
	}
}

func TestDurationLimitFilter_Unconfigured(t *testing.T) {
	f := NewDurationLimitFilter()
	result := f.Check(context.Background(), Upload{})
	assert.True(t, result.Accepted)
}

func TestDurationLimitFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "Valid config",
			settings: map[string]any{"min_seconds": 30.5, "max_minutes": 5.0},
		},
		{
			name:     "Valid integers",
			settings: map[string]any{"min_seconds": 30, "max_minutes": 5},
		},
		{
			name:     "Invalid min > max",
			settings: map[string]any{"min_seconds": 600, "max_minutes": 5},
			wantErr:  true,
		},
		{
			name:     "Invalid negative min",
			settings: map[string]any{"min_seconds": -1.0},
			wantErr:  true,
		},
		{
			name:     "Zero max (allowed, means no limit)",
			settings: map[string]any{"max_minutes": 0.0},
		},
		{
			name:     "Invalid negative max",
			settings: map[string]any{"max_minutes": -1.0},
			wantErr:  true,
		},
		{
			name:     "Empty settings",
			settings: map[string]any{},
		},
		{
			name:     "Wrong type",
			settings: map[string]any{"max_minutes": "ten"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			err := f.ValidateConfig(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, f.config)
			}
		})
	}
}
