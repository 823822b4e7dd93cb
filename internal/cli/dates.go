package cli

import (
	"fmt"
	"time"

	"github.com/fitbridge/fitbridge/internal/timeutil"
)

// earliestDate is the oldest date the converter accepts; Fitbit data
// predating it does not exist.
var earliestDate = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

// dateWindow builds the conversion window from the date flags. Given
// dates must lie in [2010-01-01, today] and start must not exceed end.
// The window is then widened one day on each given side so sessions
// spanning midnight at the edges survive the per-record date check.
func dateWindow(startRaw, endRaw string, now time.Time) (timeutil.Window, error) {
	today := timeutil.DateOf(now.UTC())

	start := earliestDate
	end := today

	if startRaw != "" {
		d, err := parseDateArg(startRaw, "start", today)
		if err != nil {
			return timeutil.Window{}, err
		}
		start = d
	}
	if endRaw != "" {
		d, err := parseDateArg(endRaw, "end", today)
		if err != nil {
			return timeutil.Window{}, err
		}
		end = d
	}
	if start.After(end) {
		return timeutil.Window{}, fmt.Errorf("start date must be before or the same as the end date")
	}

	if startRaw != "" {
		start = start.AddDate(0, 0, -1)
	}
	if endRaw != "" {
		end = end.AddDate(0, 0, 1)
	}
	return timeutil.Window{Start: start, End: end}, nil
}

func parseDateArg(raw, argtype string, today time.Time) (time.Time, error) {
	d, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date: %w", argtype, err)
	}
	if d.Before(earliestDate) || d.After(today) {
		return time.Time{}, fmt.Errorf(
			"invalid %s date %s, must be on or before today's date and no older than 2010-01-01", argtype, raw)
	}
	return d, nil
}
