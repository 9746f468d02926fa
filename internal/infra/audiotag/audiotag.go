// Package audiotag reads song metadata embedded in uploaded audio files.
package audiotag

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
)

// ErrNoTags is returned when the file carries no recognizable metadata.
var ErrNoTags = errors.New("no metadata tags found")

// Info is the subset of embedded metadata used for uploads.
type Info struct {
	Title    string
	Artist   string
	Album    string
	FileType string
	Duration time.Duration // From the ID3 TLEN frame; 0 when absent
}

// Read reads the tags from r. The read position of r is undefined afterwards.
func Read(r io.ReadSeeker) (Info, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Info{}, ErrNoTags
		}
		return Info{}, errors.Wrap(err, "failed to read tags")
	}

	artist := strings.TrimSpace(m.Artist())
	if artist == "" {
		artist = strings.TrimSpace(m.AlbumArtist())
	}

	return Info{
		Title:    strings.TrimSpace(m.Title()),
		Artist:   artist,
		Album:    strings.TrimSpace(m.Album()),
		FileType: string(m.FileType()),
		Duration: lengthFrame(m.Raw()),
	}, nil
}

// lengthFrame parses the ID3v2 TLEN (v2.3/2.4) or TLE (v2.2) frame, which
// holds the length in milliseconds.
func lengthFrame(raw map[string]any) time.Duration {
	for _, key := range []string{"TLEN", "TLE"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(strings.TrimSpace(strings.TrimRight(s, "\x00")), 10, 64)
		if err != nil || ms <= 0 {
			continue
		}
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}
