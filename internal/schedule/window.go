// Package schedule holds the pure planning arithmetic of the client:
// deriving a semester's date window from its opaque key, and
// reconstructing per-day remaining effort from a flat study plan.
package schedule

import (
	"fmt"
	"time"
)

const keyDateLen = len("2006-01-02")

// SemesterKey is the backend's semester identifier together with the
// start date parsed out of it. The raw form is what goes back on the
// wire; the parsed form is what the client computes with.
type SemesterKey struct {
	Raw   string
	Start time.Time
}

// ParseKey parses a semester identifier. The first ten characters must
// be a YYYY-MM-DD date (the term's nominal start); anything after them
// is carried along verbatim in Raw.
func ParseKey(raw string) (SemesterKey, error) {
	if len(raw) < keyDateLen {
		return SemesterKey{}, fmt.Errorf("semester key %q too short for a date prefix", raw)
	}
	start, err := time.ParseInLocation("2006-01-02", raw[:keyDateLen], time.UTC)
	if err != nil {
		return SemesterKey{}, fmt.Errorf("semester key %q: %w", raw, err)
	}
	return SemesterKey{Raw: raw, Start: start}, nil
}

// Window returns the inclusive date range of the academic term.
//
// Terms starting in September or later run through January 31 of the
// following year. Terms starting January through June run through
// June 30 of the same year. A July or August start has no defined
// academic term; the window closes on the last day of the month five
// months after the start.
func (k SemesterKey) Window() (start, end time.Time) {
	year, month := k.Start.Year(), int(k.Start.Month())

	switch {
	case month >= 9:
		end = time.Date(year+1, time.January, 31, 0, 0, 0, 0, time.UTC)
	case month <= 6:
		end = time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)
	default:
		endYear, endMonth := year, month+5
		if endMonth > 12 {
			endMonth -= 12
			endYear++
		}
		end = lastDayOfMonth(endYear, time.Month(endMonth))
	}
	return k.Start, end
}

// Contains reports whether d falls inside the window, inclusive on
// both ends. Only the date portion of d is considered.
func Contains(start, end, d time.Time) bool {
	d = DateOnly(d)
	return !d.Before(start) && !d.After(end)
}

// Clamp returns d limited to [start, end].
func Clamp(start, end, d time.Time) time.Time {
	d = DateOnly(d)
	if d.Before(start) {
		return start
	}
	if d.After(end) {
		return end
	}
	return d
}

// DateOnly truncates t to midnight UTC of the same calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) time.Time {
	// Day 0 of the next month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}
