package stats

import (
	"fmt"
	"time"
)

// Buckets accepted by SnapToStart.
const (
	BucketHour = "hour"
	BucketDay  = "day"
	BucketWeek = "week"
)

// ValidBucket reports whether bucket is a supported rollup size.
func ValidBucket(bucket string) error {
	switch bucket {
	case BucketHour, BucketDay, BucketWeek:
		return nil
	}
	return fmt.Errorf("unknown bucket %q (want hour, day or week)", bucket)
}

// SnapToStart normalizes a timestamp to the beginning of its bucket. Weeks
// start on Monday.
func SnapToStart(t time.Time, bucket string) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case BucketHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case BucketWeek:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}
