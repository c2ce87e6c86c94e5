package schedule

import (
	"fmt"
	"time"
)

// FormatCountdown renders a millisecond duration as M:SS, or H:MM:SS from
// one hour up. Negative and sub-second values render as 0:00.
func FormatCountdown(ms int64) string {
	totalSeconds := ms / 1000
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	s := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	m := totalMinutes % 60
	h := totalMinutes / 60

	if h <= 0 {
		return fmt.Sprintf("%d:%02d", m, s)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// Countdown is FormatCountdown for a time.Duration.
func Countdown(d time.Duration) string {
	return FormatCountdown(d.Milliseconds())
}
