// Package reader deserializes source files into lazy record sequences.
//
// Readers yield one record at a time and hold the file open only while
// their sequence is being consumed; the handle is released when the
// sequence is exhausted or abandoned. A decode failure is yielded as an
// error and terminates the sequence; partial-file recovery is not
// attempted.
package reader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/fitbridge/fitbridge/internal/models"
)

// Func reads one file into a lazy, single-pass record sequence.
type Func func(path string) iter.Seq2[models.RawRecord, error]

// ForType returns the reader bound to a file type.
func ForType(ft models.FileType) (Func, error) {
	switch ft {
	case models.FileCSV:
		return CSV, nil
	case models.FileJSON:
		return JSON, nil
	default:
		return nil, fmt.Errorf("no reader for file type %q", ft)
	}
}

// CSV streams a headered CSV file as one record per row, keyed by
// column name. Values stay strings; interpretation is the caller's job.
func CSV(path string) iter.Seq2[models.RawRecord, error] {
	return func(yield func(models.RawRecord, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer f.Close()

		cr := csv.NewReader(f)
		cr.FieldsPerRecord = -1

		header, err := cr.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("read %s: %w", path, err))
			return
		}

		for {
			row, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read %s: %w", path, err))
				return
			}
			rec := make(models.RawRecord, len(header))
			for i, col := range header {
				if i < len(row) {
					rec[col] = row[i]
				}
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// JSON streams a file holding a top-level JSON array of objects,
// decoding one element at a time so large exports are never fully
// materialized.
func JSON(path string) iter.Seq2[models.RawRecord, error] {
	return func(yield func(models.RawRecord, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		if _, err := dec.Token(); err != nil {
			yield(nil, fmt.Errorf("decode %s: %w", path, err))
			return
		}
		for dec.More() {
			var rec models.RawRecord
			if err := dec.Decode(&rec); err != nil {
				yield(nil, fmt.Errorf("decode %s: %w", path, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
