package healthsync

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/reader"
	"github.com/fitbridge/fitbridge/internal/timeutil"
)

// SessionReader reads one Health Sync sleep file, a CSV stage timeline
// covering a single session, and assembles it into one record shaped
// like a Fitbit sleep session so the standard sleep transforms apply
// unchanged. Files with no data rows yield nothing.
func SessionReader(path string) iter.Seq2[models.RawRecord, error] {
	return func(yield func(models.RawRecord, error) bool) {
		var rows []models.RawRecord
		for rec, err := range reader.CSV(path) {
			if err != nil {
				yield(nil, err)
				return
			}
			rows = append(rows, rec)
		}
		if len(rows) == 0 {
			return
		}
		session, err := assemble(rows)
		if err != nil {
			yield(nil, fmt.Errorf("%s: %w", path, err))
			return
		}
		yield(session, nil)
	}
}

// stageOf maps a Health Sync stage description to the Fitbit stage
// marker. Descriptions vary between app versions, so matching is by
// substring.
func stageOf(description string) string {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "light"):
		return "light"
	case strings.Contains(d, "deep"):
		return "deep"
	case strings.Contains(d, "rem"):
		return "rem"
	case strings.Contains(d, "wake"):
		return "wake"
	default:
		return ""
	}
}

type stageTotal struct {
	count   int
	seconds int
}

func assemble(rows []models.RawRecord) (models.RawRecord, error) {
	start, err := rowTime(rows[0])
	if err != nil {
		return nil, err
	}
	last, err := rowTime(rows[len(rows)-1])
	if err != nil {
		return nil, err
	}
	lastSeconds, err := rowSeconds(rows[len(rows)-1])
	if err != nil {
		return nil, err
	}
	end := last.Add(time.Duration(lastSeconds) * time.Second)
	total := int(end.Sub(start).Seconds())
	if total <= 0 {
		return nil, fmt.Errorf("session ends before it starts")
	}

	totals := map[string]*stageTotal{
		"wake": {}, "light": {}, "deep": {}, "rem": {},
	}
	timeline := make([]any, 0, len(rows))
	for _, row := range rows {
		seconds, err := rowSeconds(row)
		if err != nil {
			return nil, err
		}
		stage := stageOf(rowString(row, "Sleep stage"))
		timeline = append(timeline, map[string]any{
			"dateTime": rowString(row, "Date"),
			"level":    stage,
			"seconds":  float64(seconds),
		})
		if t, known := totals[stage]; known {
			t.count++
			t.seconds += seconds
		}
	}

	// Only stages the session actually contains go into the summary:
	// the light-sleep admissibility check keys off summary membership.
	summary := make(map[string]any, len(totals))
	for stage, t := range totals {
		if t.count == 0 {
			continue
		}
		summary[stage] = map[string]any{
			"count":   float64(t.count),
			"minutes": float64(t.seconds / 60),
		}
	}
	wake := totals["wake"].seconds

	return models.RawRecord{
		"dateOfSleep":  end.Format("2006-01-02"),
		"startTime":    start.Format(timeutil.LayoutISO),
		"endTime":      end.Format(timeutil.LayoutISO),
		"duration":     float64(total) * 1000,
		"minutesAwake": float64(wake / 60),
		"efficiency":   float64(100 - wake*100/total),
		"levels": map[string]any{
			"summary": summary,
			"data":    timeline,
		},
	}, nil
}

func rowTime(row models.RawRecord) (time.Time, error) {
	raw := rowString(row, "Date")
	t, err := time.Parse(layoutStamp, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("sleep row timestamp %q: %w", raw, err)
	}
	return t, nil
}

func rowSeconds(row models.RawRecord) (int, error) {
	raw := rowString(row, "Duration in seconds")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("sleep row duration %q: %w", raw, err)
	}
	return n, nil
}

func rowString(row models.RawRecord, key string) string {
	s, _ := row[key].(string)
	return s
}
