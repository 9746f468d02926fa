// Package playback provides the playback queue controller.
package playback

import (
	"time"

	"github.com/osa030/melodia/internal/domain/track"
)

// State represents the coarse playback state.
type State int

const (
	StateIdle    State = iota // No track loaded
	StatePlaying              // Track is playing
	StatePaused               // Track is loaded but not playing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens when the queue or a track ends.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota // Stop at the end of the queue
	RepeatAll                   // Wrap to the start of the queue
	RepeatOne                   // Loop the current track
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Next returns the mode that follows m in the off → all → one cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode converts a string to a RepeatMode. Unknown values map to RepeatOff.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

// PlaybackState is a point-in-time copy of the controller state.
type PlaybackState struct {
	CurrentTrack *track.Track  // Loaded track (nil when none)
	IsPlaying    bool          // Whether the driver was told to play
	Position     time.Duration // Playback position of the current track
	Duration     time.Duration // Duration reported by the driver (0 until loaded)
	Volume       float64       // Volume in [0,1]
	Shuffle      bool          // Shuffle enabled
	Repeat       RepeatMode    // Repeat mode
	QueueIndex   int           // Index of the current track in the queue (-1 when none)
	QueueLength  int           // Number of tracks in the queue
}

// Status derives the coarse playback state.
func (s PlaybackState) Status() State {
	switch {
	case s.CurrentTrack == nil:
		return StateIdle
	case s.IsPlaying:
		return StatePlaying
	default:
		return StatePaused
	}
}
