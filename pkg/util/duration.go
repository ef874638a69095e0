package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatClock renders a duration the way video sites do: "m:ss" below an hour,
// "h:mm:ss" otherwise. Fractions of a second are dropped.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// ParseClock is the inverse of FormatClock. It accepts "ss", "m:ss" and "h:mm:ss".
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}

	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}
