// Package session pairs the two vitals streams into combined samples
// and groups them into sleep sessions for the serializers.
package session

import (
	"iter"
	"time"

	"github.com/fitbridge/fitbridge/internal/models"
)

const (
	// DefaultSplit is the silence gap that separates two sessions.
	DefaultSplit = 15 * time.Minute

	// DefaultChunkSize caps session length for serializers with a
	// bounded record count per output file.
	DefaultChunkSize = 4095
)

// Sample is one instant with both vitals present.
type Sample struct {
	Timestamp time.Time
	SpO2      int
	BPM       int
}

// Pair merges chronologically ordered SpO2 and heart-rate streams into
// samples at the instants both carry a value. Instants present in only
// one stream are dropped; the merge never buffers more than one record
// per stream.
func Pair(spo2, bpm iter.Seq2[models.VitalsRecord, error]) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		nextSpO2, stopSpO2 := iter.Pull2(spo2)
		defer stopSpO2()
		nextBPM, stopBPM := iter.Pull2(bpm)
		defer stopBPM()

		s, sErr, sOK := nextSpO2()
		b, bErr, bOK := nextBPM()
		for sOK && bOK {
			if sErr != nil {
				yield(Sample{}, sErr)
				return
			}
			if bErr != nil {
				yield(Sample{}, bErr)
				return
			}
			switch {
			case s.Timestamp.Before(b.Timestamp):
				s, sErr, sOK = nextSpO2()
			case b.Timestamp.Before(s.Timestamp):
				b, bErr, bOK = nextBPM()
			default:
				if !yield(Sample{Timestamp: s.Timestamp, SpO2: s.Value, BPM: b.Value}, nil) {
					return
				}
				s, sErr, sOK = nextSpO2()
				b, bErr, bOK = nextBPM()
			}
		}
		// Drain the surviving stream far enough to surface a pending
		// error; unmatched values are dropped either way.
		if sOK && sErr != nil {
			yield(Sample{}, sErr)
		}
		if bOK && bErr != nil {
			yield(Sample{}, bErr)
		}
	}
}

// Split groups samples into sessions, starting a new one whenever the
// gap since the previous sample exceeds the given duration.
func Split(samples iter.Seq2[Sample, error], gap time.Duration) iter.Seq2[[]Sample, error] {
	if gap <= 0 {
		gap = DefaultSplit
	}
	return func(yield func([]Sample, error) bool) {
		var current []Sample
		for s, err := range samples {
			if err != nil {
				yield(nil, err)
				return
			}
			if len(current) > 0 && s.Timestamp.After(current[len(current)-1].Timestamp.Add(gap)) {
				if !yield(current, nil) {
					return
				}
				current = nil
			}
			current = append(current, s)
		}
		if len(current) > 0 {
			yield(current, nil)
		}
	}
}

// Chunk caps each session at size samples, splitting oversized
// sessions into consecutive chunks in order.
func Chunk(sessions iter.Seq2[[]Sample, error], size int) iter.Seq2[[]Sample, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]Sample, error) bool) {
		for session, err := range sessions {
			if err != nil {
				yield(nil, err)
				return
			}
			for start := 0; start < len(session); start += size {
				end := min(start+size, len(session))
				if !yield(session[start:end], nil) {
					return
				}
			}
		}
	}
}
