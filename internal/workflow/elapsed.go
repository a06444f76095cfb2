package workflow

import (
	"fmt"
	"time"
)

// splitDuration clamps d at zero and breaks it into whole hours, minutes and seconds.
func splitDuration(d time.Duration) (h, m, s int64) {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return total / 3600, (total % 3600) / 60, total % 60
}

// FormatClock renders d as HH:MM:SS. Hours are not capped at 24.
func FormatClock(d time.Duration) string {
	h, m, s := splitDuration(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatElapsed renders d for people, e.g. "1시간 5분 30초".
func FormatElapsed(d time.Duration) string {
	h, m, s := splitDuration(d)
	return fmt.Sprintf("%d시간 %d분 %d초", h, m, s)
}

// FormatDate renders t as YY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("06-01-02")
}

// Since returns the elapsed time from start to now, zero when start is unknown or later than now.
func Since(start *time.Time, now time.Time) time.Duration {
	if start == nil || start.IsZero() {
		return 0
	}
	if d := now.Sub(*start); d > 0 {
		return d
	}
	return 0
}
