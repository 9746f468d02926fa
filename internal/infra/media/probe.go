package media

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/melodia/internal/domain/track"
)

var (
	ErrSourceNotFound    = errors.New("media source not found")
	ErrSourceUnavailable = errors.New("media source unavailable")
)

// Prober checks that a media source can be loaded.
// A zero duration means the prober could not determine it.
type Prober interface {
	Probe(ctx context.Context, source string) (time.Duration, error)
}

// SourceProber resolves local sources against a media directory and checks
// remote sources with an HTTP HEAD request.
type SourceProber struct {
	mediaDir string
	client   *http.Client
}

// NewSourceProber creates a prober for the given media directory.
func NewSourceProber(mediaDir string, timeout time.Duration) *SourceProber {
	return &SourceProber{
		mediaDir: mediaDir,
		client:   &http.Client{Timeout: timeout},
	}
}

// Probe implements Prober.
func (p *SourceProber) Probe(ctx context.Context, source string) (time.Duration, error) {
	if source == "" {
		return 0, ErrSourceNotFound
	}

	if track.IsRemoteSource(source) {
		return 0, p.probeRemote(ctx, source)
	}
	return 0, p.probeLocal(source)
}

func (p *SourceProber) probeRemote(ctx context.Context, source string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, source, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build probe request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrapf(ErrSourceUnavailable, "%s: %v", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrap(ErrSourceNotFound, source)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(ErrSourceUnavailable, "%s: status %d", source, resp.StatusCode)
	}
	return nil
}

func (p *SourceProber) probeLocal(source string) error {
	path := ResolveLocal(p.mediaDir, source)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrSourceNotFound, source)
		}
		return errors.Wrap(err, "failed to stat media file")
	}
	if info.IsDir() {
		return errors.Wrap(ErrSourceNotFound, source)
	}
	return nil
}

// ResolveLocal maps a local source reference to a path inside mediaDir.
// Only the base name is used so sources cannot escape the directory.
func ResolveLocal(mediaDir, source string) string {
	return filepath.Join(mediaDir, filepath.Base(filepath.Clean("/"+source)))
}
