package extract

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/logging"
	"github.com/fitbridge/fitbridge/internal/models"
)

func recordSeq(recs []models.RawRecord) iter.Seq2[models.RawRecord, error] {
	return func(yield func(models.RawRecord, error) bool) {
		for _, r := range recs {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func failingSeq(recs []models.RawRecord, err error) iter.Seq2[models.RawRecord, error] {
	return func(yield func(models.RawRecord, error) bool) {
		for _, r := range recs {
			if !yield(r, nil) {
				return
			}
		}
		yield(nil, err)
	}
}

func bpmParams() VitalsParams {
	return VitalsParams{
		Timestamp:  fieldpath.Parse("dateTime"),
		Value:      fieldpath.Parse("value.bpm"),
		Kind:       "Heart rate",
		MinValid:   BPMMinValid,
		Location:   time.UTC,
		UseSeconds: true,
	}
}

func bpmRecord(minute, bpm int) models.RawRecord {
	return models.RawRecord{
		"dateTime": fmt.Sprintf("2023-05-01T01:%02d:00", minute),
		"value":    map[string]any{"bpm": float64(bpm)},
	}
}

// A vitals file with 20 heart-rate records, 5 below 50 bpm, yields
// exactly 15 pairs in input order and logs the summary line.
func TestVitalsThresholdAndSummary(t *testing.T) {
	gofakeit.Seed(11)

	var recs []models.RawRecord
	var wantValues []int
	for i := 0; i < 20; i++ {
		bpm := gofakeit.Number(BPMMinValid, 180)
		if i%4 == 3 { // 5 of 20 below threshold
			bpm = gofakeit.Number(10, BPMMinValid-1)
		} else {
			wantValues = append(wantValues, bpm)
		}
		recs = append(recs, bpmRecord(i, bpm))
	}

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, slog.LevelDebug, "text")

	var got []models.VitalsRecord
	for v, err := range Vitals(recordSeq(recs), bpmParams(), log) {
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Len(t, got, 15)
	for i, v := range got {
		assert.Equal(t, wantValues[i], v.Value, "emission %d out of input order", i)
	}
	assert.Contains(t, buf.String(), "Extracted 15 valid Heart rate entries out of 20")
}

// Values exactly at the configured floor are accepted; one below is not.
func TestVitalsThresholdInclusive(t *testing.T) {
	recs := []models.RawRecord{
		bpmRecord(0, BPMMinValid),
		bpmRecord(1, BPMMinValid-1),
	}

	var got []models.VitalsRecord
	for v, err := range Vitals(recordSeq(recs), bpmParams(), slog.New(slog.DiscardHandler)) {
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Len(t, got, 1)
	assert.Equal(t, BPMMinValid, got[0].Value)
}

func TestVitalsSpO2Boundary(t *testing.T) {
	p := VitalsParams{
		Timestamp:  fieldpath.Parse("timestamp"),
		Value:      fieldpath.Parse("value"),
		Kind:       "SpO2",
		MinValid:   SpO2MinValid,
		Location:   time.UTC,
		UseSeconds: true,
	}

	// CSV-shaped records carry string values.
	recs := []models.RawRecord{
		{"timestamp": "2023-05-01T01:00:00", "value": "75.0"},
		{"timestamp": "2023-05-01T01:01:00", "value": "74.9"},
		{"timestamp": "2023-05-01T01:02:00", "value": "96.4"},
	}

	var got []models.VitalsRecord
	for v, err := range Vitals(recordSeq(recs), p, slog.New(slog.DiscardHandler)) {
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Len(t, got, 2)
	assert.Equal(t, 75, got[0].Value)
	assert.Equal(t, 96, got[1].Value)
}

func TestVitalsTimestampConversion(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	p := bpmParams()
	p.Location = loc

	recs := []models.RawRecord{{
		"dateTime": "2023-05-01T12:00:00Z",
		"value":    map[string]any{"bpm": float64(70)},
	}}

	var got []models.VitalsRecord
	for v, err := range Vitals(recordSeq(recs), p, slog.New(slog.DiscardHandler)) {
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].Timestamp.Hour())
	assert.Equal(t, loc, got[0].Timestamp.Location())
}

func TestVitalsPropagatesReadError(t *testing.T) {
	readErr := errors.New("truncated file")
	seq := Vitals(failingSeq([]models.RawRecord{bpmRecord(0, 70)}, readErr), bpmParams(), slog.New(slog.DiscardHandler))

	var emitted int
	var last error
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

func TestVitalsBadRecordFailsRun(t *testing.T) {
	tests := []struct {
		name string
		rec  models.RawRecord
	}{
		{"missing timestamp", models.RawRecord{"value": map[string]any{"bpm": float64(70)}}},
		{"unparseable timestamp", models.RawRecord{"dateTime": "noon", "value": map[string]any{"bpm": float64(70)}}},
		{"missing value", models.RawRecord{"dateTime": "2023-05-01T01:00:00"}},
		{"non-numeric value", models.RawRecord{"dateTime": "2023-05-01T01:00:00", "value": map[string]any{"bpm": "high"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var last error
			for _, err := range Vitals(recordSeq([]models.RawRecord{tt.rec}), bpmParams(), slog.New(slog.DiscardHandler)) {
				last = err
			}
			assert.Error(t, last)
		})
	}
}

// The counters satisfy valid <= extracted, with equality exactly when
// every record passes.
func TestVitalsCounters(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, slog.LevelInfo, "text")

	recs := []models.RawRecord{bpmRecord(0, 80), bpmRecord(1, 90), bpmRecord(2, 100)}
	for _, err := range Vitals(recordSeq(recs), bpmParams(), log) {
		require.NoError(t, err)
	}
	assert.Contains(t, buf.String(), "Extracted 3 valid Heart rate entries out of 3")
}
