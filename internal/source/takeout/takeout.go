// Package takeout handles Fitbit data exported through Google Takeout:
// SpO2 as CSV, heart rate and sleep as JSON under Global Export Data,
// timestamps in UTC, and the profile timezone in Your Profile.
package takeout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/reader"
	"github.com/fitbridge/fitbridge/internal/source"
)

const FormatName = "takeout"

// Handler implements source.Handler for Google Takeout exports.
type Handler struct{}

func New() Handler { return Handler{} }

func (Handler) Name() string { return FormatName }

// Resolve accepts either the Takeout root or the directory holding the
// Fitbit folder directly.
func (Handler) Resolve(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s is not a valid takeout directory", root)
	}
	candidates := []string{
		filepath.Join(root, "Fitbit"),
		filepath.Join(root, "Takeout", "Fitbit"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("no Fitbit directory under %s", root)
}

func (Handler) Files(base string) (map[models.Kind][]string, error) {
	files := make(map[models.Kind][]string, 3)
	patterns := map[models.Kind]string{
		models.KindSpO2:  filepath.Join(base, "Oxygen Saturation (SpO2)", "spo2-*.csv"),
		models.KindBPM:   filepath.Join(base, "Global Export Data", "heart-rate-*.json"),
		models.KindSleep: filepath.Join(base, "Global Export Data", "sleep-*.json"),
	}
	for kind, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(matches)
		files[kind] = matches
	}
	return files, nil
}

func (Handler) FileType(kind models.Kind) models.FileType {
	if kind == models.KindSpO2 {
		return models.FileCSV
	}
	return models.FileJSON
}

// Timezone reads the profile timezone from Your Profile/Profile.csv,
// taking the value of the last row. A missing or empty timezone is a
// broken export and fails the run.
func (Handler) Timezone(base string) (*time.Location, error) {
	profile := filepath.Join(base, "Your Profile", "Profile.csv")

	var name string
	for rec, err := range reader.CSV(profile) {
		if err != nil {
			return nil, err
		}
		if tz, ok := rec["timezone"].(string); ok {
			name = tz
		}
	}
	if name == "" {
		return nil, fmt.Errorf("no timezone in profile %s", profile)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("profile timezone %q: %w", name, err)
	}
	return loc, nil
}

func (Handler) Config() source.Config {
	return source.Config{
		VitalsTimestamp: map[models.Kind]fieldpath.Path{
			models.KindSpO2: fieldpath.Parse("timestamp"),
			models.KindBPM:  fieldpath.Parse("dateTime"),
		},
		VitalsValue: map[models.Kind]fieldpath.Path{
			models.KindSpO2: fieldpath.Parse("value"),
			models.KindBPM:  fieldpath.Parse("value.bpm"),
		},
		UseSeconds: true,
		SleepRequired: fieldpath.ParseAll([]string{
			"dateOfSleep", "levels.summary", "levels.data",
		}),
		SleepTimestamp: fieldpath.Parse("dateOfSleep"),
		SleepStages:    fieldpath.Parse("levels.summary"),
		Transforms:     source.SleepTransforms(),
	}
}
