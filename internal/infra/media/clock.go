// Package media provides media drivers for the playback controller.
package media

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/app/playback"
)

var (
	ErrNotLoaded       = errors.New("no media loaded")
	ErrUnknownDuration = errors.New("media duration unknown")
)

// ClockConfig represents the settings of the clock driver.
type ClockConfig struct {
	TickMs         int  `yaml:"tick_ms" mapstructure:"tick_ms" default:"250" validate:"gte=1,lte=5000"`
	LoadDelayMs    int  `yaml:"load_delay_ms" mapstructure:"load_delay_ms" default:"50" validate:"gte=0,lte=10000"`
	ProbeSources   bool `yaml:"probe_sources" mapstructure:"probe_sources"`
	ProbeTimeoutMs int  `yaml:"probe_timeout_ms" mapstructure:"probe_timeout_ms" default:"3000" validate:"gte=100,lte=60000"`
}

// DecodeClockConfig decodes driver settings from a config map.
func DecodeClockConfig(settings map[string]any) (ClockConfig, error) {
	var config ClockConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return config, errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return config, errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&config); err != nil {
		return config, errors.Wrap(err, "failed to set defaults")
	}

	if err := validator.New().Struct(config); err != nil {
		return config, errors.Wrap(err, "validation failed")
	}

	return config, nil
}

// ClockDriver is a virtual media element. It does not decode audio; it
// advances a wall-clock position while playing and reports progress and
// end of track to the listener.
type ClockDriver struct {
	mu sync.Mutex

	listener playback.Listener
	prober   Prober // nil disables probing

	tick      time.Duration
	loadDelay time.Duration

	// Current media
	generation uint64
	loaded     bool
	duration   time.Duration

	// Position is position + (now - startedAt) while playing
	playing   bool
	position  time.Duration
	startedAt time.Time

	volume float64

	loadCancel func()
	tickCancel func()
}

var _ playback.Driver = (*ClockDriver)(nil)

// NewClockDriver creates a clock driver. prober may be nil.
func NewClockDriver(config ClockConfig, prober Prober) *ClockDriver {
	tick := time.Duration(config.TickMs) * time.Millisecond
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	return &ClockDriver{
		prober:    prober,
		tick:      tick,
		loadDelay: time.Duration(config.LoadDelayMs) * time.Millisecond,
		volume:    1,
	}
}

// SetListener implements playback.Driver.
func (d *ClockDriver) SetListener(l playback.Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = l
}

// Load implements playback.Driver. Any pending load and the running clock
// are cancelled.
func (d *ClockDriver) Load(generation uint64, m playback.Media) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopTickLocked()
	if d.loadCancel != nil {
		d.loadCancel()
		d.loadCancel = nil
	}

	d.generation = generation
	d.loaded = false
	d.playing = false
	d.position = 0
	d.duration = 0

	ctx, cancel := context.WithCancel(context.Background())
	d.loadCancel = cancel

	go d.load(ctx, generation, m)
}

func (d *ClockDriver) load(ctx context.Context, generation uint64, m playback.Media) {
	if d.loadDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.loadDelay):
		}
	}

	duration := m.Duration
	if d.prober != nil {
		probed, err := d.prober.Probe(ctx, m.Source)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.notifyFailed(generation, err)
			return
		}
		if probed > 0 {
			duration = probed
		}
	}
	if duration <= 0 {
		d.notifyFailed(generation, errors.Wrap(ErrUnknownDuration, m.Source))
		return
	}

	d.mu.Lock()
	if generation != d.generation || ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	d.loaded = true
	d.duration = duration
	d.loadCancel = nil
	listener := d.listener
	d.mu.Unlock()

	zlog.Debug().Msgf("media: loaded: source=%s duration=%v generation=%d", m.Source, duration, generation)
	if listener != nil {
		listener.OnLoaded(generation, duration)
	}
}

// Play implements playback.Driver. Playing after the end restarts from zero.
func (d *ClockDriver) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		return ErrNotLoaded
	}
	if d.playing {
		return nil
	}
	if d.position >= d.duration {
		d.position = 0
	}

	d.playing = true
	d.startedAt = toWallTime(time.Now())
	d.startTickLocked()
	return nil
}

// Pause implements playback.Driver.
func (d *ClockDriver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.playing {
		return nil
	}
	d.position = d.positionLocked()
	d.playing = false
	d.stopTickLocked()
	return nil
}

// Seek implements playback.Driver.
func (d *ClockDriver) Seek(position time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		return ErrNotLoaded
	}
	if position < 0 {
		position = 0
	}
	if position > d.duration {
		position = d.duration
	}
	d.position = position
	if d.playing {
		d.startedAt = toWallTime(time.Now())
	}
	return nil
}

// SetVolume implements playback.Driver.
func (d *ClockDriver) SetVolume(volume float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = volume
	return nil
}

// Volume returns the last volume set.
func (d *ClockDriver) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

// Position returns the current playback position.
func (d *ClockDriver) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.positionLocked()
}

// Playing returns true while the clock is running.
func (d *ClockDriver) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

// Close stops the clock and cancels any pending load.
func (d *ClockDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopTickLocked()
	if d.loadCancel != nil {
		d.loadCancel()
		d.loadCancel = nil
	}
	d.playing = false
}

func (d *ClockDriver) positionLocked() time.Duration {
	if !d.playing {
		return d.position
	}
	pos := d.position + toWallTime(time.Now()).Sub(d.startedAt)
	if pos > d.duration {
		return d.duration
	}
	return pos
}

// startTickLocked starts the progress clock. Must be called with lock held.
func (d *ClockDriver) startTickLocked() {
	d.stopTickLocked()

	ctx, cancel := context.WithCancel(context.Background())
	d.tickCancel = cancel
	generation := d.generation

	go func() {
		ticker := time.NewTicker(d.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if done := d.onTick(ctx, generation); done {
					return
				}
			}
		}
	}()
}

// onTick reports progress and returns true once the track has ended.
func (d *ClockDriver) onTick(ctx context.Context, generation uint64) bool {
	d.mu.Lock()
	if ctx.Err() != nil || generation != d.generation || !d.playing {
		d.mu.Unlock()
		return true
	}

	pos := d.positionLocked()
	ended := pos >= d.duration
	if ended {
		d.position = d.duration
		d.playing = false
		d.tickCancel = nil
	}
	listener := d.listener
	d.mu.Unlock()

	if listener == nil {
		return ended
	}
	listener.OnProgress(generation, pos)
	if ended {
		listener.OnEnded(generation)
	}
	return ended
}

func (d *ClockDriver) stopTickLocked() {
	if d.tickCancel != nil {
		d.tickCancel()
		d.tickCancel = nil
	}
}

func (d *ClockDriver) notifyFailed(generation uint64, err error) {
	d.mu.Lock()
	if generation != d.generation {
		d.mu.Unlock()
		return
	}
	d.loadCancel = nil
	listener := d.listener
	d.mu.Unlock()

	zlog.Warn().Err(err).Msgf("media: load failed: generation=%d", generation)
	if listener != nil {
		listener.OnFailed(generation, err)
	}
}

// toWallTime returns the time with monotonic clock stripped.
// This ensures that time differences are calculated using wall clock time.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
