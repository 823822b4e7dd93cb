// Package models defines the record shapes that flow through the
// conversion pipeline: raw per-file records as read from a tracker
// export, and the normalized vitals and sleep shapes handed to the
// serializers.
package models

import "time"

// RawRecord is one measurement or sleep session exactly as deserialized
// from a source file. Shape varies by source format; values are probed
// with fieldpath rather than assumed.
type RawRecord map[string]any

// VitalsRecord is one validated, thresholded SpO2 or heart-rate sample.
type VitalsRecord struct {
	Timestamp time.Time
	Value     int
}

// SleepRecord maps a fixed set of semantic field names (start time,
// per-stage durations, efficiency, hypnogram, ...) to values derived
// from a single raw sleep record.
type SleepRecord map[string]any

// Kind identifies one of the three data streams a source export carries.
type Kind string

const (
	KindSpO2  Kind = "spo2"
	KindBPM   Kind = "bpm"
	KindSleep Kind = "sleep"
)

// Label returns the human-readable name used in log output.
func (k Kind) Label() string {
	switch k {
	case KindSpO2:
		return "SpO2"
	case KindBPM:
		return "Heart rate"
	case KindSleep:
		return "Sleep"
	default:
		return string(k)
	}
}

// FileType selects the deserializer for a source file.
type FileType string

const (
	FileCSV  FileType = "csv"
	FileJSON FileType = "json"
)
