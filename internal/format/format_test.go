package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59*time.Second + 900*time.Millisecond, "0:59"},
		{245 * time.Second, "4:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.in), tt.in.String())
	}
	assert.Equal(t, "3:00", Seconds(180))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "1.2K", Count(1234))
	assert.Equal(t, "12.3K", Count(12345))
	assert.Equal(t, "3.4M", Count(3_400_000))
	assert.Equal(t, "1K", Count(1000))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "March 15, 2024", Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", Date(time.Time{}))
}

func TestAgo(t *testing.T) {
	assert.Equal(t, "3 days ago", Ago(time.Now().Add(-72*time.Hour-time.Minute)))
	assert.Equal(t, "-", Ago(time.Time{}))
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "4.2 MB", Bytes(4_200_000))
	assert.Equal(t, "0 B", Bytes(-1))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "75%", Percent(0.75))
	assert.Equal(t, "100%", Percent(1))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "=====-----", ProgressBar(30*time.Second, time.Minute, 10))
	assert.Equal(t, "----------", ProgressBar(0, 0, 10))
	assert.Equal(t, "==========", ProgressBar(2*time.Minute, time.Minute, 10))
	assert.Equal(t, "", ProgressBar(0, time.Minute, 0))
}
