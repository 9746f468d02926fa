package media

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/melodia/internal/app/playback"
	"github.com/osa030/melodia/internal/domain/track"
)

type recordingListener struct {
	mu       sync.Mutex
	loaded   []uint64
	progress []time.Duration
	ended    []uint64
	failed   []error

	loadedCh chan time.Duration
	endedCh  chan uint64
	failedCh chan error
}

func newRecordingListener() *recordingListener {
	return &recordingListener{
		loadedCh: make(chan time.Duration, 8),
		endedCh:  make(chan uint64, 8),
		failedCh: make(chan error, 8),
	}
}

func (l *recordingListener) OnLoaded(generation uint64, duration time.Duration) {
	l.mu.Lock()
	l.loaded = append(l.loaded, generation)
	l.mu.Unlock()
	l.loadedCh <- duration
}

func (l *recordingListener) OnProgress(_ uint64, position time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = append(l.progress, position)
}

func (l *recordingListener) OnEnded(generation uint64) {
	l.mu.Lock()
	l.ended = append(l.ended, generation)
	l.mu.Unlock()
	l.endedCh <- generation
}

func (l *recordingListener) OnFailed(_ uint64, err error) {
	l.mu.Lock()
	l.failed = append(l.failed, err)
	l.mu.Unlock()
	l.failedCh <- err
}

func (l *recordingListener) loadedGenerations() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint64(nil), l.loaded...)
}

type stubProber struct {
	duration time.Duration
	err      error
}

func (p stubProber) Probe(context.Context, string) (time.Duration, error) {
	return p.duration, p.err
}

func newTestDriver(t *testing.T, prober Prober) (*ClockDriver, *recordingListener) {
	t.Helper()
	d := NewClockDriver(ClockConfig{TickMs: 5, LoadDelayMs: 0}, prober)
	l := newRecordingListener()
	d.SetListener(l)
	t.Cleanup(d.Close)
	return d, l
}

func waitLoaded(t *testing.T, l *recordingListener) time.Duration {
	t.Helper()
	select {
	case d := <-l.loadedCh:
		return d
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for load")
		return 0
	}
}

func TestDecodeClockConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := DecodeClockConfig(map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, 250, config.TickMs)
		assert.Equal(t, 50, config.LoadDelayMs)
		assert.False(t, config.ProbeSources)
		assert.Equal(t, 3000, config.ProbeTimeoutMs)
	})

	t.Run("overrides", func(t *testing.T) {
		config, err := DecodeClockConfig(map[string]any{
			"tick_ms":       "100",
			"probe_sources": true,
		})
		require.NoError(t, err)
		assert.Equal(t, 100, config.TickMs)
		assert.True(t, config.ProbeSources)
	})

	t.Run("invalid tick", func(t *testing.T) {
		_, err := DecodeClockConfig(map[string]any{"tick_ms": 99999})
		assert.Error(t, err)
	})
}

func TestClockDriver_LoadUsesMetadataDuration(t *testing.T) {
	d, l := newTestDriver(t, nil)

	d.Load(1, playback.Media{Source: "a.mp3", Duration: 3 * time.Second})

	assert.Equal(t, 3*time.Second, waitLoaded(t, l))
	assert.Equal(t, []uint64{1}, l.loadedGenerations())
}

func TestClockDriver_LoadUsesProbedDuration(t *testing.T) {
	d, l := newTestDriver(t, stubProber{duration: 5 * time.Second})

	d.Load(1, playback.Media{Source: "a.mp3", Duration: 3 * time.Second})

	assert.Equal(t, 5*time.Second, waitLoaded(t, l))
}

func TestClockDriver_LoadFailures(t *testing.T) {
	t.Run("probe error", func(t *testing.T) {
		d, l := newTestDriver(t, stubProber{err: ErrSourceNotFound})
		d.Load(1, playback.Media{Source: "missing.mp3", Duration: time.Second})

		select {
		case err := <-l.failedCh:
			assert.True(t, errors.Is(err, ErrSourceNotFound))
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for failure")
		}
	})

	t.Run("unknown duration", func(t *testing.T) {
		d, l := newTestDriver(t, nil)
		d.Load(1, playback.Media{Source: "a.mp3"})

		select {
		case err := <-l.failedCh:
			assert.True(t, errors.Is(err, ErrUnknownDuration))
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for failure")
		}
	})
}

func TestClockDriver_PlayBeforeLoad(t *testing.T) {
	d, _ := newTestDriver(t, nil)

	assert.ErrorIs(t, d.Play(), ErrNotLoaded)
	assert.ErrorIs(t, d.Seek(time.Second), ErrNotLoaded)
	assert.NoError(t, d.Pause())
}

func TestClockDriver_PlaysToEnd(t *testing.T) {
	d, l := newTestDriver(t, nil)

	d.Load(7, playback.Media{Source: "a.mp3", Duration: 30 * time.Millisecond})
	waitLoaded(t, l)
	require.NoError(t, d.Play())
	assert.True(t, d.Playing())

	select {
	case gen := <-l.endedCh:
		assert.Equal(t, uint64(7), gen)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for end")
	}

	assert.False(t, d.Playing())
	assert.Equal(t, 30*time.Millisecond, d.Position())

	l.mu.Lock()
	assert.NotEmpty(t, l.progress)
	l.mu.Unlock()
}

func TestClockDriver_PlayAfterEndRestarts(t *testing.T) {
	d, l := newTestDriver(t, nil)

	d.Load(1, playback.Media{Source: "a.mp3", Duration: 20 * time.Millisecond})
	waitLoaded(t, l)
	require.NoError(t, d.Play())
	<-l.endedCh

	require.NoError(t, d.Play())
	assert.True(t, d.Playing())
	assert.Less(t, d.Position(), 20*time.Millisecond)
}

func TestClockDriver_PauseAndSeek(t *testing.T) {
	d, l := newTestDriver(t, nil)

	d.Load(1, playback.Media{Source: "a.mp3", Duration: time.Minute})
	waitLoaded(t, l)
	require.NoError(t, d.Play())
	require.NoError(t, d.Pause())
	assert.False(t, d.Playing())

	require.NoError(t, d.Seek(10*time.Second))
	assert.Equal(t, 10*time.Second, d.Position())

	require.NoError(t, d.Seek(-time.Second))
	assert.Equal(t, time.Duration(0), d.Position())

	require.NoError(t, d.Seek(2*time.Minute))
	assert.Equal(t, time.Minute, d.Position())
}

func TestClockDriver_ReloadDiscardsPendingLoad(t *testing.T) {
	d := NewClockDriver(ClockConfig{TickMs: 5, LoadDelayMs: 50}, nil)
	l := newRecordingListener()
	d.SetListener(l)
	t.Cleanup(d.Close)

	d.Load(1, playback.Media{Source: "a.mp3", Duration: time.Second})
	d.Load(2, playback.Media{Source: "b.mp3", Duration: 2 * time.Second})

	assert.Equal(t, 2*time.Second, waitLoaded(t, l))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []uint64{2}, l.loadedGenerations())
}

func TestClockDriver_SetVolume(t *testing.T) {
	d, _ := newTestDriver(t, nil)

	assert.Equal(t, 1.0, d.Volume())
	require.NoError(t, d.SetVolume(0.3))
	assert.Equal(t, 0.3, d.Volume())
}

func TestClockDriver_DrivesController(t *testing.T) {
	d := NewClockDriver(ClockConfig{TickMs: 5}, nil)
	t.Cleanup(d.Close)

	c := playback.NewController(playback.Config{}, d)
	t.Cleanup(c.Close)

	a := track.Track{ID: "a", AudioURL: "a.mp3", Duration: 20 * time.Millisecond}
	b := track.Track{ID: "b", AudioURL: "b.mp3", Duration: 20 * time.Millisecond}
	c.Play(a, []track.Track{a, b})

	deadline := time.After(time.Second)
	for {
		select {
		case e := <-c.Events():
			if e.Type == playback.EventQueueEnded {
				assert.False(t, e.State.IsPlaying)
				assert.Equal(t, "b", e.State.CurrentTrack.ID)
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for queue end")
		}
	}
}
