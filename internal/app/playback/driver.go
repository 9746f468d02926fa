package playback

import "time"

// Media describes what the driver should load.
type Media struct {
	Source   string        // Audio source reference
	Duration time.Duration // Duration from track metadata (hint, may be 0)
}

// Driver is the media element the controller commands.
//
// Load must not block; the driver reports completion through the
// Listener from its own goroutine and never calls the Listener from
// inside one of its own methods.
type Driver interface {
	SetListener(l Listener)
	Load(generation uint64, m Media)
	Play() error
	Pause() error
	Seek(position time.Duration) error
	SetVolume(volume float64) error
}

// Listener receives asynchronous driver notifications.
// Each notification carries the generation passed to the Load it belongs to.
type Listener interface {
	OnLoaded(generation uint64, duration time.Duration)
	OnProgress(generation uint64, position time.Duration)
	OnEnded(generation uint64)
	OnFailed(generation uint64, err error)
}
