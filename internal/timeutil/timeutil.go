// Package timeutil normalizes source-specific timestamps into
// timezone-aware instants and provides the inclusive date-window checks
// shared by the validator and the collector.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// LayoutISO is the timestamp layout used by Takeout exports.
const LayoutISO = "2006-01-02T15:04:05"

// Normalize parses a raw timestamp and attaches timezone information.
// A trailing 'Z' marks the value as UTC; it is converted into loc.
// Otherwise the value is interpreted as local to loc. When useSeconds
// is false the instant is truncated to minute granularity, matching
// exports that only record minutes.
func Normalize(raw, layout string, loc *time.Location, useSeconds bool) (time.Time, error) {
	if layout == "" {
		layout = LayoutISO
	}
	if loc == nil {
		loc = time.Local
	}

	var ts time.Time
	if strings.HasSuffix(raw, "Z") {
		utc, err := time.ParseInLocation(layout, strings.TrimSuffix(raw, "Z"), time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		ts = utc.In(loc)
	} else {
		local, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		ts = local
	}

	if !useSeconds {
		ts = ts.Truncate(time.Minute)
	}
	return ts, nil
}

// Window is an inclusive date range. Only the calendar date of the
// bounds is significant.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of t falls inside the
// window, inclusive on both ends. Comparison is by calendar date, not
// by instant, so a sample carrying a different timezone than the
// bounds is still accepted on the boundary dates.
func (w Window) Contains(t time.Time) bool {
	d := dateUTC(t)
	return !d.Before(dateUTC(w.Start)) && !d.After(dateUTC(w.End))
}

// dateUTC projects a value's calendar date into UTC so dates compare
// equal across locations.
func dateUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf strips the time-of-day component, keeping the location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dateLayouts covers the date spellings the supported exports use.
var dateLayouts = []string{"2006-01-02", "2006-1-2", "2006.01.02"}

// ParseDate parses a bare date in any supported spelling.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, must match YYYY-M-D format", s)
}

// MinutesToClock renders a duration in minutes as HH:MM:00.
func MinutesToClock(minutes int) string {
	hours, mins := minutes/60, minutes%60
	return fmt.Sprintf("%02d:%02d:00", hours, mins)
}
