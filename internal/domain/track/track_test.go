package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Matches(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		artist   string
		query    string
		expected bool
	}{
		{
			name:     "title substring",
			title:    "Summer Vibes",
			artist:   "João Silva",
			query:    "summer",
			expected: true,
		},
		{
			name:     "artist substring",
			title:    "Summer Vibes",
			artist:   "João Silva",
			query:    "SILVA",
			expected: true,
		},
		{
			name:     "non-ascii artist",
			title:    "Summer Vibes",
			artist:   "João Silva",
			query:    "joão",
			expected: true,
		},
		{
			name:     "no match",
			title:    "Summer Vibes",
			artist:   "João Silva",
			query:    "ocean",
			expected: false,
		},
		{
			name:     "empty query",
			title:    "Summer Vibes",
			artist:   "João Silva",
			query:    "   ",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Track{
				ID:     "1",
				Title:  tt.title,
				Artist: Artist{Name: tt.artist},
			}
			assert.Equal(t, tt.expected, tr.Matches(tt.query))
		})
	}
}

func TestIsRemoteSource(t *testing.T) {
	assert.True(t, IsRemoteSource("https://example.com/a.mp3"))
	assert.True(t, IsRemoteSource("http://example.com/a.mp3"))
	assert.False(t, IsRemoteSource("a.mp3"))
	assert.False(t, IsRemoteSource(""))
}

func TestIndexOf(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, 0, IndexOf(tracks, "a"))
	assert.Equal(t, 2, IndexOf(tracks, "c"))
	assert.Equal(t, -1, IndexOf(tracks, "z"))
	assert.Equal(t, -1, IndexOf(nil, "a"))
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, IDs([]Track{{ID: "a"}, {ID: "b"}}))
	assert.Empty(t, IDs(nil))
}
