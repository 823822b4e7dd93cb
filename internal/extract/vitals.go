// Package extract turns raw record sequences into the normalized
// vitals and sleep streams. Extractors are lazy: each returned sequence
// materializes one item at a time, is single-pass, and is not
// restartable. Callers needing another pass re-invoke the producer.
package extract

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/timeutil"
)

// Minimum valid values below which a sample is discarded as a sensor
// artifact. Both bounds are inclusive.
const (
	SpO2MinValid = 75
	BPMMinValid  = 50
)

// progressInterval controls how often a valid emission is logged at
// debug level.
const progressInterval = 15

// VitalsParams configures one vitals extraction pass.
type VitalsParams struct {
	Timestamp  fieldpath.Path
	Value      fieldpath.Path
	Layout     string // timestamp layout, ISO when empty
	Kind       string // human-readable label for logging
	MinValid   int    // inclusive threshold
	Location   *time.Location
	UseSeconds bool
}

// Vitals extracts (instant, value) pairs from a raw record sequence.
// Records below the threshold are counted but not emitted; records at
// exactly the threshold are emitted. Once the input is exhausted the
// valid/extracted summary is logged. Errors from the input sequence,
// unparseable timestamps, and non-numeric values all terminate the
// stream; bad files are not an expected condition.
func Vitals(records iter.Seq2[models.RawRecord, error], p VitalsParams, log *slog.Logger) iter.Seq2[models.VitalsRecord, error] {
	return func(yield func(models.VitalsRecord, error) bool) {
		extracted, valid := 0, 0

		for rec, err := range records {
			if err != nil {
				yield(models.VitalsRecord{}, err)
				return
			}

			rawTS, found := fieldpath.Resolve(rec, p.Timestamp)
			if !found {
				yield(models.VitalsRecord{}, fmt.Errorf("%s record has no timestamp at %q", p.Kind, p.Timestamp))
				return
			}
			s, ok := rawTS.(string)
			if !ok {
				yield(models.VitalsRecord{}, fmt.Errorf("%s timestamp at %q is not a string", p.Kind, p.Timestamp))
				return
			}
			ts, err := timeutil.Normalize(s, p.Layout, p.Location, p.UseSeconds)
			if err != nil {
				yield(models.VitalsRecord{}, err)
				return
			}

			rawValue, found := fieldpath.Resolve(rec, p.Value)
			if !found {
				yield(models.VitalsRecord{}, fmt.Errorf("%s record has no value at %q", p.Kind, p.Value))
				return
			}
			value, err := toNumber(rawValue)
			if err != nil {
				yield(models.VitalsRecord{}, fmt.Errorf("%s value at %q: %w", p.Kind, p.Value, err))
				return
			}

			extracted++
			if value < float64(p.MinValid) {
				continue
			}
			valid++
			if valid%progressInterval == 0 {
				log.Debug(fmt.Sprintf("%s: %s %d", ts, p.Kind, int(math.Round(value))))
			}
			out := models.VitalsRecord{Timestamp: ts, Value: int(math.Round(value))}
			if !yield(out, nil) {
				return
			}
		}

		log.Info(fmt.Sprintf("Extracted %d valid %s entries out of %d", valid, p.Kind, extracted))
	}
}

// toNumber coerces the value shapes the supported exports produce:
// JSON numbers decode as float64, CSV cells as strings.
func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}
