package filter

import (
	"context"
	"regexp"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/domain/track"
)

// DuplicateTrackFilterName is the config name of DuplicateTrackFilter.
const DuplicateTrackFilterName = "duplicate_track_filter"

// SongFinder looks up catalog songs by artist.
type SongFinder interface {
	SongsByArtistName(ctx context.Context, name string) ([]track.Track, error)
}

// DuplicateTrackFilter rejects uploads of songs already in the catalog.
// Detects:
// - Same title and artist
// - Remasters and alternate versions (normalized title + same artist)
// Excludes:
// - Cover songs (same title but different artist)
type DuplicateTrackFilter struct {
	finder SongFinder
}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter(finder SongFinder) *DuplicateTrackFilter {
	return &DuplicateTrackFilter{
		finder: finder,
	}
}

func (f *DuplicateTrackFilter) Name() string {
	return DuplicateTrackFilterName
}

func (f *DuplicateTrackFilter) Description() string {
	return "Rejects songs already in the catalog, including remasters. Covers by other artists are allowed"
}

func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{"duplicate_track"}
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateTrackFilter) ValidateConfig(config map[string]any) error {
	// No configuration needed
	return nil
}

func (f *DuplicateTrackFilter) Check(ctx context.Context, u Upload) Result {
	if f.finder == nil || u.Track.Artist.Name == "" {
		return Accept()
	}

	// Only songs of the same artist can be duplicates
	existing, err := f.finder.SongsByArtistName(ctx, u.Track.Artist.Name)
	if err != nil {
		zlog.Error().Err(err).Msgf("filter: duplicate lookup failed: artist=%s", u.Track.Artist.Name)
		return Accept()
	}

	title := normalizeTrackName(u.Track.Title)
	for _, t := range existing {
		if normalizeTrackName(t.Title) == title {
			return Reject("duplicate_track")
		}
	}
	return Accept()
}

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),              // "(Any Remaster text)"
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),              // "[Any Remaster text]"
	}

	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`),        // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),           // "(Radio Edit)"
		regexp.MustCompile(`\s*\(live\)`),              // "(Live)"
		regexp.MustCompile(`\s*-?\s*\blive\b`),         // "- Live"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`),     // "- Radio Edit"
		regexp.MustCompile(`\s*-?\s*single\s+version`), // "- Single Version"
	}

	whitespace = regexp.MustCompile(`\s+`)
)

// normalizeTrackName removes remaster information and version details.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = whitespace.ReplaceAllString(normalized, " ")

	// Remove trailing dashes
	return strings.TrimRight(normalized, " -")
}

func init() {
	Register(DuplicateTrackFilterName, func() Filter {
		return NewDuplicateTrackFilter(nil)
	})
}
