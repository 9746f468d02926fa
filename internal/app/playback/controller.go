package playback

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/domain/track"
)

// DefaultVolume is the initial volume when none is configured.
const DefaultVolume = 0.75

// Config holds controller configuration.
type Config struct {
	InitialVolume   *float64        // Volume applied at construction, clamped to [0,1]; nil uses DefaultVolume
	EventBufferSize int             // Capacity of the event channel
	Intn            func(n int) int // Random source for shuffle, returns [0,n); nil uses math/rand/v2
}

// Controller owns the playback state and the queue. It is the only
// mutation path into either and drives a single media Driver.
type Controller struct {
	mu sync.RWMutex

	driver Driver

	// Queue management
	queue []track.Track // Rebuilt on every Play
	index int           // Index of the current track in queue, -1 when none

	// Current track state
	current   *track.Track
	isPlaying bool
	position  time.Duration
	duration  time.Duration

	// Settings
	volume  float64
	shuffle bool
	repeat  RepeatMode

	// Incremented on every track selection; driver callbacks carrying an
	// older value are discarded.
	generation uint64

	intn func(n int) int

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

var _ Listener = (*Controller)(nil)

// NewController creates a new playback controller and attaches it to driver.
func NewController(config Config, driver Driver) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	volume := DefaultVolume
	if config.InitialVolume != nil {
		volume = clampVolume(*config.InitialVolume)
	}
	bufferSize := config.EventBufferSize
	if bufferSize <= 0 {
		bufferSize = 64
	}
	intn := config.Intn
	if intn == nil {
		intn = rand.IntN
	}

	c := &Controller{
		driver:  driver,
		queue:   make([]track.Track, 0),
		index:   -1,
		volume:  volume,
		repeat:  RepeatOff,
		intn:    intn,
		eventCh: make(chan Event, bufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	driver.SetListener(c)
	if err := driver.SetVolume(volume); err != nil {
		zlog.Warn().Err(err).Msg("playback: failed to apply initial volume")
	}

	return c
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Play loads t and replaces the queue with list, or with [t] when list is
// empty. If t is not part of list it is placed at the front so the queue
// always contains the current track.
func (c *Controller) Play(t track.Track, list []track.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var queue []track.Track
	index := 0
	if len(list) > 0 {
		index = track.IndexOf(list, t.ID)
		if index < 0 {
			queue = make([]track.Track, 0, len(list)+1)
			queue = append(queue, t)
			queue = append(queue, list...)
			index = 0
		} else {
			queue = make([]track.Track, len(list))
			copy(queue, list)
		}
	} else {
		queue = []track.Track{t}
	}

	c.queue = queue
	zlog.Debug().Msgf("playback: play requested: track=%s queue_size=%d index=%d", t.ID, len(queue), index)
	c.selectLocked(index)
}

// TogglePlayPause flips between playing and paused. No-op when nothing is loaded.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	c.isPlaying = !c.isPlaying
	if c.isPlaying {
		if err := c.driver.Play(); err != nil {
			zlog.Error().Err(err).Msgf("playback: driver failed to resume: track=%s", c.current.ID)
		}
	} else {
		if err := c.driver.Pause(); err != nil {
			zlog.Error().Err(err).Msgf("playback: driver failed to pause: track=%s", c.current.ID)
		}
	}

	c.sendEventLocked(EventStateChanged)
}

// PlayNext advances the queue. With shuffle on it picks a random track
// other than the current one; otherwise it moves to the next index, wraps
// when repeat is all, or stops at the end of the queue.
func (c *Controller) PlayNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.playNextLocked()
}

// PlayPrevious moves to the previous track, always wrapping around.
func (c *Controller) PlayPrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.queue)
	if n == 0 {
		return
	}
	c.selectLocked((c.index - 1 + n) % n)
}

// Seek moves the playback position. No-op when nothing is loaded.
// Position is clamped to [0, duration] once the duration is known.
func (c *Controller) Seek(position time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	c.seekLocked(position)
	c.sendEventLocked(EventProgress)
}

// SetVolume sets the volume, clamped to [0,1].
func (c *Controller) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = clampVolume(volume)
	if err := c.driver.SetVolume(c.volume); err != nil {
		zlog.Error().Err(err).Msgf("playback: driver failed to set volume: volume=%.2f", c.volume)
	}

	c.sendEventLocked(EventSettingsChanged)
}

// ToggleShuffle flips shuffle. The queue order is not changed.
func (c *Controller) ToggleShuffle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shuffle = !c.shuffle
	c.sendEventLocked(EventSettingsChanged)
}

// ToggleRepeat cycles the repeat mode off → all → one → off.
func (c *Controller) ToggleRepeat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repeat = c.repeat.Next()
	c.sendEventLocked(EventSettingsChanged)
}

// State returns a snapshot of the playback state.
func (c *Controller) State() PlaybackState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Queue returns a copy of the queue.
func (c *Controller) Queue() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]track.Track, len(c.queue))
	copy(result, c.queue)
	return result
}

// OnLoaded handles the driver's data-ready notification and starts playback.
func (c *Controller) OnLoaded(generation uint64, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(generation) {
		zlog.Debug().Msgf("playback: discarding stale load: generation=%d current=%d", generation, c.generation)
		return
	}

	c.duration = duration
	if err := c.driver.Play(); err != nil {
		zlog.Error().Err(err).Msgf("playback: driver failed to play: track=%s", c.current.ID)
		return
	}
	c.isPlaying = true

	zlog.Debug().Msgf("playback: track started: track=%s duration=%v", c.current.ID, duration)
	c.sendEventLocked(EventTrackStarted)
}

// OnProgress handles the driver's time-progress notification.
func (c *Controller) OnProgress(generation uint64, position time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(generation) {
		return
	}

	c.position = c.clampPositionLocked(position)
	c.sendEventLocked(EventProgress)
}

// OnEnded handles the driver's track-end notification. With repeat one the
// track restarts from zero; otherwise the queue advances.
func (c *Controller) OnEnded(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(generation) {
		zlog.Debug().Msgf("playback: discarding stale end: generation=%d current=%d", generation, c.generation)
		return
	}

	zlog.Debug().Msgf("playback: track ended: track=%s repeat=%s", c.current.ID, c.repeat)
	c.sendEventLocked(EventTrackEnded)

	if c.repeat == RepeatOne {
		c.seekLocked(0)
		c.isPlaying = true
		if err := c.driver.Play(); err != nil {
			zlog.Error().Err(err).Msgf("playback: driver failed to replay: track=%s", c.current.ID)
		}
		c.sendEventLocked(EventProgress)
		return
	}

	c.playNextLocked()
}

// OnFailed logs a driver load or playback failure. The state is left as is.
func (c *Controller) OnFailed(generation uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(generation) {
		return
	}

	zlog.Error().Err(err).Msgf("playback: media failure: track=%s source=%s", c.current.ID, c.current.AudioURL)
}

// Close closes the controller and releases resources.
func (c *Controller) Close() {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.current != nil && c.isPlaying {
		_ = c.driver.Pause()
	}
	c.closed = true
	close(c.eventCh)
}

// playNextLocked must be called with lock held.
func (c *Controller) playNextLocked() {
	n := len(c.queue)
	if n == 0 {
		return
	}

	if c.shuffle {
		c.selectLocked(c.pickShuffleLocked())
		return
	}

	next := c.index + 1
	switch {
	case next < n:
		c.selectLocked(next)
	case c.repeat == RepeatAll:
		c.selectLocked(0)
	default:
		c.isPlaying = false
		if err := c.driver.Pause(); err != nil {
			zlog.Error().Err(err).Msg("playback: driver failed to stop at end of queue")
		}
		zlog.Debug().Msgf("playback: end of queue reached: track=%s", c.current.ID)
		c.sendEventLocked(EventQueueEnded)
	}
}

// pickShuffleLocked picks uniformly among the queue indices other than the
// current one. Must be called with lock held and a non-empty queue.
func (c *Controller) pickShuffleLocked() int {
	n := len(c.queue)
	if n == 1 || c.index < 0 {
		return c.intn(n)
	}
	i := c.intn(n - 1)
	if i >= c.index {
		i++
	}
	return i
}

// selectLocked makes queue[index] current and asks the driver to load it.
// Must be called with lock held.
func (c *Controller) selectLocked(index int) {
	t := c.queue[index]
	c.index = index
	c.current = &t
	c.position = 0
	c.duration = 0
	c.generation++

	c.driver.Load(c.generation, Media{
		Source:   t.AudioURL,
		Duration: t.Duration,
	})

	c.sendEventLocked(EventTrackChanged)
}

// seekLocked must be called with lock held and a current track.
func (c *Controller) seekLocked(position time.Duration) {
	c.position = c.clampPositionLocked(position)
	if err := c.driver.Seek(c.position); err != nil {
		zlog.Error().Err(err).Msgf("playback: driver failed to seek: position=%v", c.position)
	}
}

func (c *Controller) clampPositionLocked(position time.Duration) time.Duration {
	if position < 0 {
		return 0
	}
	if c.duration > 0 && position > c.duration {
		return c.duration
	}
	return position
}

func (c *Controller) isCurrentLocked(generation uint64) bool {
	return c.current != nil && generation == c.generation
}

func (c *Controller) snapshotLocked() PlaybackState {
	s := PlaybackState{
		IsPlaying:   c.isPlaying,
		Position:    c.position,
		Duration:    c.duration,
		Volume:      c.volume,
		Shuffle:     c.shuffle,
		Repeat:      c.repeat,
		QueueIndex:  c.index,
		QueueLength: len(c.queue),
	}
	if c.current != nil {
		t := *c.current
		s.CurrentTrack = &t
	}
	return s
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(t EventType) {
	if c.closed {
		return
	}
	e := Event{Type: t, State: c.snapshotLocked()}
	select {
	case c.eventCh <- e:
		// Successfully sent
	case <-c.ctx.Done():
		// Context cancelled, don't send
	default:
		// Channel full, drop event
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
