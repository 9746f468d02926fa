// Package format renders durations, counts and dates for terminal output.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Duration formats d as m:ss, or h:mm:ss from one hour up.
// Negative durations are treated as zero.
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Seconds formats a duration given in whole seconds.
func Seconds(seconds int64) string {
	return Duration(time.Duration(seconds) * time.Second)
}

// Count abbreviates large numbers: 999, 1.2K, 3.4M.
func Count(n int) string {
	if n < 1000 && n > -1000 {
		return fmt.Sprintf("%d", n)
	}
	value, prefix := humanize.ComputeSI(float64(n))
	s := humanize.FtoaWithDigits(value, 1)
	if prefix == "k" {
		prefix = "K"
	}
	return s + prefix
}

// Date formats t as "January 2, 2006".
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("January 2, 2006")
}

// Ago formats t relative to now, such as "3 days ago".
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Bytes formats a size such as "4.2 MB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Percent formats a [0,1] ratio as a whole percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%d%%", int(ratio*100+0.5))
}

// ProgressBar renders position/duration as a fixed-width bar.
func ProgressBar(position, duration time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if duration > 0 {
		filled = int(int64(width) * int64(position) / int64(duration))
	}
	filled = max(0, min(filled, width))
	return strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
}
