package core

import (
	"fmt"
	"strings"
	"time"
)

// MemoryUnit is a memory unit the pipeline understands, both on raw scheduler
// values and as a canonical target.
type MemoryUnit string

const (
	KB MemoryUnit = "KB"
	MB MemoryUnit = "MB"
	GB MemoryUnit = "GB"
	TB MemoryUnit = "TB"
)

func ParseMemoryUnit(s string) (MemoryUnit, error) {
	switch MemoryUnit(strings.ToUpper(s)) {
	case KB:
		return KB, nil
	case MB:
		return MB, nil
	case GB:
		return GB, nil
	case TB:
		return TB, nil
	}
	return "", fmt.Errorf("unknown memory unit %q", s)
}

// TimeUnit is a duration unit for queue/run time metrics.
type TimeUnit string

const (
	Seconds TimeUnit = "seconds"
	Minutes TimeUnit = "minutes"
	Hours   TimeUnit = "hours"
)

func ParseTimeUnit(s string) (TimeUnit, error) {
	switch TimeUnit(strings.ToLower(s)) {
	case Seconds:
		return Seconds, nil
	case Minutes:
		return Minutes, nil
	case Hours:
		return Hours, nil
	}
	return "", fmt.Errorf("unknown time unit %q", s)
}

// Interval is the aggregation bucket width.
type Interval string

const (
	Hour Interval = "hour"
	Day  Interval = "day"
	Week Interval = "week"
)

func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(s)) {
	case Hour:
		return Hour, nil
	case Day:
		return Day, nil
	case Week:
		return Week, nil
	}
	return "", fmt.Errorf("unknown interval %q, want hour, day or week", s)
}

// Duration returns the bucket width. Weeks are fixed seven-day spans.
func (i Interval) Duration() time.Duration {
	switch i {
	case Hour:
		return time.Hour
	case Week:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Floor truncates t to the containing bucket's start. Hours and days truncate
// in UTC; weeks floor to Monday 00:00 UTC, matching how accounting reports
// conventionally cut weekly periods.
func (i Interval) Floor(t time.Time) time.Time {
	t = t.UTC()
	switch i {
	case Hour:
		return t.Truncate(time.Hour)
	case Week:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// Monday=0 .. Sunday=6
		back := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -back)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}
