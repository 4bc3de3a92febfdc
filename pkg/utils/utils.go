package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders seconds in the largest whole unit (s, m or h)
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatSince renders the time elapsed between an epoch-seconds timestamp and now
func FormatSince(start float64, now time.Time) string {
	elapsed := float64(now.UnixNano())/1e9 - start
	if elapsed < 0 {
		elapsed = 0
	}
	return FormatRoundedUnit(int64(elapsed))
}
