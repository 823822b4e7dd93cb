// Package healthsync handles Fitbit data exported through the Health
// Sync app: everything CSV, one file per day with the date in the
// filename, timestamps in the machine's local timezone, and sleep
// shipped as one stage timeline per session file.
package healthsync

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/source"
)

const FormatName = "healthsync"

// layoutStamp is the timestamp spelling Health Sync uses in CSV cells.
const layoutStamp = "2006.01.02 15:04:05"

// Handler implements source.Handler for Health Sync exports.
type Handler struct{}

func New() Handler { return Handler{} }

func (Handler) Name() string { return FormatName }

func (Handler) Resolve(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s is not a valid health sync directory", root)
	}
	return root, nil
}

func (Handler) Files(base string) (map[models.Kind][]string, error) {
	files := make(map[models.Kind][]string, 3)
	patterns := map[models.Kind]string{
		models.KindSpO2:  filepath.Join(base, "Oxygen Saturation", "Oxygen saturation ????.??.?? Fitbit.csv"),
		models.KindBPM:   filepath.Join(base, "Heart rate", "Heart rate ????.??.?? Fitbit.csv"),
		models.KindSleep: filepath.Join(base, "Health Sync Sleep", "Sleep ????.??.?? ?? ?? ?? Fitbit.csv"),
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

func (Handler) FileType(models.Kind) models.FileType { return models.FileCSV }

// Timezone is the machine's local zone; Health Sync writes local
// timestamps and carries no profile data.
func (Handler) Timezone(string) (*time.Location, error) { return time.Local, nil }

func (Handler) Config() source.Config {
	return source.Config{
		VitalsTimestamp: map[models.Kind]fieldpath.Path{
			models.KindSpO2: fieldpath.Parse("Date"),
			models.KindBPM:  fieldpath.Parse("Date"),
		},
		VitalsValue: map[models.Kind]fieldpath.Path{
			models.KindSpO2: fieldpath.Parse("Oxygen Saturation"),
			models.KindBPM:  fieldpath.Parse("Heart rate"),
		},
		TimestampLayout: layoutStamp,
		UseSeconds:      false,
		SleepRequired: fieldpath.ParseAll([]string{
			"dateOfSleep", "levels.summary", "levels.data",
		}),
		SleepTimestamp: fieldpath.Parse("dateOfSleep"),
		SleepStages:    fieldpath.Parse("levels.summary"),
		Transforms:     source.SleepTransforms(),
		SleepReader:    SessionReader,
	}
}
