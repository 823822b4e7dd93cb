package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fitbridge/fitbridge/internal/extract"
	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/timeutil"
)

// hypnogramLabels maps stage markers to the labels the analysis tool
// expects, one entry per 30-second interval.
var hypnogramLabels = map[string]string{
	"wake":  "WAKE",
	"rem":   "REM",
	"light": "Light",
	"deep":  "Deep",
}

// SleepTransforms is the standard transform set for records shaped
// like a Fitbit sleep session (dateOfSleep, startTime, endTime,
// duration in milliseconds, minutesAwake, efficiency, and a levels
// subtree with per-stage summaries and a stage timeline).
func SleepTransforms() []extract.TransformPair {
	return []extract.TransformPair{
		{Field: "start_time", Fn: stringAt("startTime")},
		{Field: "stop_time", Fn: stringAt("endTime")},
		{Field: "sleep_onset_duration", Fn: func(rec models.RawRecord) any {
			return timeutil.MinutesToClock(int(numberAt(rec, "duration") / 60000))
		}},
		{Field: "light_sleep_duration", Fn: clockAt("levels.summary.light.minutes")},
		{Field: "deep_sleep_duration", Fn: clockAt("levels.summary.deep.minutes")},
		{Field: "rem_sleep_duration", Fn: clockAt("levels.summary.rem.minutes")},
		{Field: "wake_after_sleep_onset_duration", Fn: clockAt("minutesAwake")},
		{Field: "number_awakenings", Fn: func(rec models.RawRecord) any {
			return int(numberAt(rec, "levels.summary.wake.count"))
		}},
		{Field: "sleep_efficiency", Fn: func(rec models.RawRecord) any {
			return int(numberAt(rec, "efficiency"))
		}},
		{Field: "hypnogram", Fn: Hypnogram},
	}
}

// Hypnogram renders the stage timeline as a bracketed label list, one
// label per 30 seconds spent in the stage. Stages outside the known
// set are dropped.
func Hypnogram(rec models.RawRecord) any {
	raw, found := fieldpath.Resolve(rec, fieldpath.Parse("levels.data"))
	if !found {
		return "[]"
	}
	timeline, ok := raw.([]any)
	if !ok {
		return "[]"
	}

	var labels []string
	for _, item := range timeline {
		stage, ok := item.(map[string]any)
		if !ok {
			continue
		}
		level, _ := stage["level"].(string)
		label, known := hypnogramLabels[level]
		if !known {
			continue
		}
		intervals := int(toFloat(stage["seconds"])) / 30
		for i := 0; i < intervals; i++ {
			labels = append(labels, label)
		}
	}
	return fmt.Sprintf("[%s]", strings.Join(labels, ","))
}

func stringAt(path string) extract.Transform {
	p := fieldpath.Parse(path)
	return func(rec models.RawRecord) any {
		v, found := fieldpath.Resolve(rec, p)
		if !found {
			return ""
		}
		s, _ := v.(string)
		return s
	}
}

func clockAt(path string) extract.Transform {
	p := fieldpath.Parse(path)
	return func(rec models.RawRecord) any {
		v, found := fieldpath.Resolve(rec, p)
		if !found {
			return timeutil.MinutesToClock(0)
		}
		return timeutil.MinutesToClock(int(toFloat(v)))
	}
}

func numberAt(rec models.RawRecord, path string) float64 {
	v, found := fieldpath.Resolve(rec, fieldpath.Parse(path))
	if !found {
		return 0
	}
	return toFloat(v)
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
