package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/timeutil"
	"github.com/fitbridge/fitbridge/internal/validator"
)

func sleepRules() validator.Rules {
	return validator.Rules{
		Required:  fieldpath.ParseAll([]string{"dateOfSleep", "levels.summary"}),
		Timestamp: fieldpath.Parse("dateOfSleep"),
		Window: timeutil.Window{
			Start: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC),
		},
		Stages: fieldpath.Parse("levels.summary"),
	}
}

func sleepEntry(date string) models.RawRecord {
	return models.RawRecord{
		"dateOfSleep": date,
		"startTime":   date + "T23:10:00",
		"endTime":     date + "T07:20:00",
		"duration":    float64(29400000),
		"levels": map[string]any{
			"summary": map[string]any{
				"light": map[string]any{"count": float64(20), "minutes": float64(230)},
			},
		},
	}
}

func sleepTransforms() []TransformPair {
	return []TransformPair{
		{Field: "start_time", Fn: func(r models.RawRecord) any {
			v, _ := fieldpath.Resolve(r, fieldpath.Parse("startTime"))
			return v
		}},
		{Field: "light_sleep_duration", Fn: func(r models.RawRecord) any {
			v, _ := fieldpath.Resolve(r, fieldpath.Parse("levels.summary.light.minutes"))
			return timeutil.MinutesToClock(int(v.(float64)))
		}},
	}
}

func TestSleepAppliesAllTransforms(t *testing.T) {
	seq := Sleep(recordSeq([]models.RawRecord{sleepEntry("2023-05-10")}), sleepRules(), sleepTransforms())

	var got []models.SleepRecord
	for rec, err := range seq {
		require.NoError(t, err)
		got = append(got, rec)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "2023-05-10T23:10:00", got[0]["start_time"])
	assert.Equal(t, "03:50:00", got[0]["light_sleep_duration"])
}

// A sleep record missing its timestamp is skipped without an error and
// without an emission.
func TestSleepSkipsInvalidSilently(t *testing.T) {
	missing := sleepEntry("2023-05-10")
	delete(missing, "dateOfSleep")

	outOfWindow := sleepEntry("2023-07-04")

	noLight := sleepEntry("2023-05-11")
	noLight["levels"].(map[string]any)["summary"] = map[string]any{
		"deep": map[string]any{"count": float64(4), "minutes": float64(90)},
	}

	seq := Sleep(recordSeq([]models.RawRecord{
		missing, outOfWindow, noLight, sleepEntry("2023-05-12"),
	}), sleepRules(), sleepTransforms())

	var got []models.SleepRecord
	for rec, err := range seq {
		require.NoError(t, err)
		got = append(got, rec)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "2023-05-12T23:10:00", got[0]["start_time"])
}

func TestSleepOneToOne(t *testing.T) {
	entries := []models.RawRecord{
		sleepEntry("2023-05-10"),
		sleepEntry("2023-05-11"),
		sleepEntry("2023-05-12"),
	}

	var count int
	for _, err := range Sleep(recordSeq(entries), sleepRules(), sleepTransforms()) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, len(entries), count)
}

func TestSleepPropagatesReadError(t *testing.T) {
	readErr := errors.New("bad file")
	seq := Sleep(failingSeq([]models.RawRecord{sleepEntry("2023-05-10")}, readErr), sleepRules(), sleepTransforms())

	var last error
	var emitted int
	for _, err := range seq {
		if err != nil {
			last = err
			break
		}
		emitted++
	}

	assert.Equal(t, 1, emitted)
	assert.ErrorIs(t, last, readErr)
}
