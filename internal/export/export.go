// Package export serializes the normalized streams into the CSV
// layouts the analysis tool imports: one pulse-oximetry file per
// session chunk and a single sleep-session file.
package export

import (
	"encoding/csv"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/session"
)

const (
	viatomStamp   = "20060102_150405"
	viatomRowTime = "2006-01-02 15:04:05"
	dreemFilename = "dreem.csv"
)

var viatomHeader = []string{"Time", "SpO2(%)", "Pulse Rate(bpm)"}

// WriteViatom writes each chunk as one oximetry CSV named after its
// first sample's instant. Returns the written paths in chunk order.
func WriteViatom(dir string, chunks iter.Seq2[[]session.Sample, error]) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	var paths []string
	for chunk, err := range chunks {
		if err != nil {
			return paths, err
		}
		if len(chunk) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("viatom_%s.csv", chunk[0].Timestamp.Format(viatomStamp)))
		if err := writeViatomChunk(path, chunk); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeViatomChunk(path string, chunk []session.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(viatomHeader); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, s := range chunk {
		row := []string{
			s.Timestamp.Format(viatomRowTime),
			strconv.Itoa(s.SpO2),
			strconv.Itoa(s.BPM),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteDreem writes all sleep records into one CSV with the given
// column order. Records missing a column leave the cell empty.
func WriteDreem(dir string, fields []string, records iter.Seq2[models.SleepRecord, error]) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, dreemFilename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	for rec, err := range records {
		if err != nil {
			return "", err
		}
		row := make([]string, len(fields))
		for i, field := range fields {
			if v, ok := rec[field]; ok {
				row[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
