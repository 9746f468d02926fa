package audiotag

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// id3v23 builds a minimal ID3v2.3 tag with UTF-8 text frames.
func id3v23(frames map[string]string, order ...string) []byte {
	var body bytes.Buffer
	for _, id := range order {
		text := append([]byte{3}, frames[id]...)
		body.WriteString(id)
		_ = binary.Write(&body, binary.BigEndian, uint32(len(text)))
		body.Write([]byte{0, 0})
		body.Write(text)
	}

	size := body.Len()
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}
	return append(header, body.Bytes()...)
}

func TestRead(t *testing.T) {
	data := id3v23(map[string]string{
		"TIT2": "Summer Vibes",
		"TPE1": "João Silva",
		"TALB": "Sunsets",
		"TLEN": "180500",
	}, "TIT2", "TPE1", "TALB", "TLEN")

	info, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Summer Vibes", info.Title)
	assert.Equal(t, "João Silva", info.Artist)
	assert.Equal(t, "Sunsets", info.Album)
	assert.Equal(t, 180500*time.Millisecond, info.Duration)
}

func TestRead_NoLength(t *testing.T) {
	data := id3v23(map[string]string{"TIT2": "Untimed"}, "TIT2")

	info, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Untimed", info.Title)
	assert.Zero(t, info.Duration)
}

func TestRead_NoTags(t *testing.T) {
	_, err := Read(bytes.NewReader(bytes.Repeat([]byte{0xAB}, 256)))
	assert.ErrorIs(t, err, ErrNoTags)
}

func TestLengthFrame(t *testing.T) {
	assert.Equal(t, 2*time.Second, lengthFrame(map[string]any{"TLE": "2000"}))
	assert.Zero(t, lengthFrame(map[string]any{"TLEN": "abc"}))
	assert.Zero(t, lengthFrame(map[string]any{"TLEN": 42}))
	assert.Zero(t, lengthFrame(nil))
}
