package extract

import (
	"iter"

	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/validator"
)

// Transform derives one output field from a raw sleep record. Transforms
// are pure: they read the record and compute, nothing else.
type Transform func(models.RawRecord) any

// TransformPair binds an output field name to its transform. The
// configured order is the order fields are computed in.
type TransformPair struct {
	Field string
	Fn    Transform
}

// Sleep extracts normalized sleep-session records. Each input record is
// checked against rules (sleep mode); failures are skipped silently. On
// success every configured transform is applied to the same source
// record, so emission is one-to-one with validated input, never merged
// or fabricated. Errors from the input sequence terminate the stream.
func Sleep(records iter.Seq2[models.RawRecord, error], rules validator.Rules, transforms []TransformPair) iter.Seq2[models.SleepRecord, error] {
	return func(yield func(models.SleepRecord, error) bool) {
		for rec, err := range records {
			if err != nil {
				yield(nil, err)
				return
			}
			if !rules.Valid(rec) {
				continue
			}
			out := make(models.SleepRecord, len(transforms))
			for _, tp := range transforms {
				out[tp.Field] = tp.Fn(rec)
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
