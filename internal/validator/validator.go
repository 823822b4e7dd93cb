// Package validator decides whether a raw record is admissible for
// extraction. Validation failure is a routine outcome, not an error:
// rejected records are silently skipped by callers and only show up in
// aggregate counters.
package validator

import (
	"time"

	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/timeutil"
)

// lightStage is the stage marker every complete sleep session carries.
const lightStage = "light"

// Rules is the configured admissibility check for one source format.
type Rules struct {
	// Required lists field paths that must resolve in every record.
	Required []fieldpath.Path

	// Timestamp locates the record's date; TimestampLayout is its
	// spelling when it is not a bare ISO date.
	Timestamp       fieldpath.Path
	TimestampLayout string

	// Window is the inclusive date range records must fall into.
	Window timeutil.Window

	// Stages locates the sleep-stage subtree. Empty disables the
	// light-sleep check (vitals mode).
	Stages fieldpath.Path
}

// Valid reports whether rec passes every configured check: all required
// fields present, date inside the window (inclusive both ends), and,
// when a stage subtree is configured, a light-sleep stage present.
// No side effects.
func (r Rules) Valid(rec models.RawRecord) bool {
	for _, p := range r.Required {
		if _, found := fieldpath.Resolve(rec, p); !found {
			return false
		}
	}

	raw, found := fieldpath.Resolve(rec, r.Timestamp)
	if !found {
		return false
	}
	s, ok := raw.(string)
	if !ok {
		return false
	}
	date, err := parseDate(s, r.TimestampLayout)
	if err != nil {
		return false
	}
	if !r.Window.Contains(date) {
		return false
	}

	if len(r.Stages) > 0 && !fieldpath.Contains(rec, r.Stages, lightStage) {
		return false
	}
	return true
}

func parseDate(s, layout string) (time.Time, error) {
	if layout != "" {
		return time.Parse(layout, s)
	}
	return timeutil.ParseDate(s)
}
