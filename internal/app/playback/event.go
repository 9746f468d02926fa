package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackChanged    EventType = iota // A new track was selected and is loading
	EventTrackStarted                     // Loaded track started playing
	EventTrackEnded                       // Driver reported end of track
	EventStateChanged                     // Play/pause toggled
	EventQueueEnded                       // End of queue reached with repeat off
	EventProgress                         // Position changed (driver tick or seek)
	EventSettingsChanged                  // Volume, shuffle or repeat changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventStateChanged:
		return "state_changed"
	case EventQueueEnded:
		return "queue_ended"
	case EventProgress:
		return "progress"
	case EventSettingsChanged:
		return "settings_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	State PlaybackState // Controller state right after the change
}
