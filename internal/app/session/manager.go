// Package session runs the shared player: it owns the playback controller and
// its media driver, resolves play requests against the catalog and fans
// controller events out to state subscribers.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/catalog"
	"github.com/osa030/melodia/internal/app/notification"
	"github.com/osa030/melodia/internal/app/playback"
	"github.com/osa030/melodia/internal/domain/track"
)

var ErrSessionClosed = errors.New("session is closed")

// Driver is a media driver the session can shut down.
type Driver interface {
	playback.Driver
	Close()
}

// Catalog resolves play requests and records plays.
type Catalog interface {
	ResolvePlay(ctx context.Context, songID, playContext, userID string) (track.Track, []track.Track, error)
	RecordPlay(ctx context.Context, songID string) error
}

var _ Catalog = (*catalog.Service)(nil)

// Config holds session configuration.
type Config struct {
	InitialVolume   *float64
	EventBufferSize int
}

// Manager manages the shared player session.
type Manager struct {
	mu     sync.Mutex
	closed bool

	controller   *playback.Controller
	driver       Driver
	catalog      Catalog
	notification *notification.Manager

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a session manager and starts its event loop.
func NewManager(cfg Config, driver Driver, cat Catalog) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		controller: playback.NewController(playback.Config{
			InitialVolume:   cfg.InitialVolume,
			EventBufferSize: cfg.EventBufferSize,
		}, driver),
		driver:       driver,
		catalog:      cat,
		notification: notification.NewManager(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	go m.playbackLoop()
	return m
}

// Done returns a channel that is closed when the event loop exits.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Notifications returns the state subscriber manager.
func (m *Manager) Notifications() *notification.Manager {
	return m.notification
}

// Play resolves songID within playContext and starts playing it.
// userID is required only for the liked context.
func (m *Manager) Play(ctx context.Context, songID, playContext, userID string) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	t, list, err := m.catalog.ResolvePlay(ctx, songID, playContext, userID)
	if err != nil {
		return err
	}
	zlog.Info().Msgf("session: play: song=%s context=%q queue=%d", t.ID, playContext, len(list))
	m.controller.Play(t, list)
	return nil
}

// TogglePlayPause toggles between playing and paused.
func (m *Manager) TogglePlayPause() error {
	return m.do(m.controller.TogglePlayPause)
}

// Next skips to the next track.
func (m *Manager) Next() error {
	return m.do(m.controller.PlayNext)
}

// Previous moves to the previous track, wrapping to the last.
func (m *Manager) Previous() error {
	return m.do(m.controller.PlayPrevious)
}

// ToggleShuffle flips shuffle.
func (m *Manager) ToggleShuffle() error {
	return m.do(m.controller.ToggleShuffle)
}

// ToggleRepeat cycles the repeat mode.
func (m *Manager) ToggleRepeat() error {
	return m.do(m.controller.ToggleRepeat)
}

// Seek moves the playback position.
func (m *Manager) Seek(position time.Duration) error {
	return m.do(func() { m.controller.Seek(position) })
}

// SetVolume sets the volume. Values outside [0,1] are clamped.
func (m *Manager) SetVolume(volume float64) error {
	return m.do(func() { m.controller.SetVolume(volume) })
}

// State returns the current playback state.
func (m *Manager) State() playback.PlaybackState {
	return m.controller.State()
}

// Queue returns the current queue.
func (m *Manager) Queue() []track.Track {
	return m.controller.Queue()
}

// Close stops the event loop, the controller and the driver.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	<-m.done
	m.controller.Close()
	m.driver.Close()
	m.notification.Close()
	zlog.Info().Msg("session: closed")
}

func (m *Manager) checkOpen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSessionClosed
	}
	return nil
}

func (m *Manager) do(fn func()) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	fn()
	return nil
}

// playbackLoop forwards controller events to subscribers.
func (m *Manager) playbackLoop() {
	defer close(m.done)

	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-m.controller.Events():
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

func (m *Manager) handlePlaybackEvent(event playback.Event) {
	if event.Type != playback.EventProgress {
		zlog.Debug().Msgf("session: playback event: type=%s", event.Type)
	}

	if event.Type == playback.EventTrackStarted && event.State.CurrentTrack != nil {
		id := event.State.CurrentTrack.ID
		if err := m.catalog.RecordPlay(m.ctx, id); err != nil {
			zlog.Warn().Err(err).Msgf("session: failed to record play: song=%s", id)
		}
	}

	m.notification.Broadcast(event.Type.String(), rpc.FromState(event.State))
}
