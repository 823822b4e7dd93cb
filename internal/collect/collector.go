// Package collect drives extraction across the files of one source
// export. The collector knows nothing about source formats: it is
// handed file lists, field paths and thresholds by the format handler
// and wires readers to extractors.
package collect

import (
	"iter"
	"log/slog"

	"github.com/fitbridge/fitbridge/internal/extract"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/reader"
	"github.com/fitbridge/fitbridge/internal/timeutil"
	"github.com/fitbridge/fitbridge/internal/validator"
)

// VitalsSource describes one vitals stream of a source export: the
// files holding it, how to read them, and how to extract from them.
type VitalsSource struct {
	Files    []string
	FileType models.FileType
	Params   extract.VitalsParams
	Window   timeutil.Window
}

// SleepSource describes the sleep stream of a source export.
type SleepSource struct {
	Files      []string
	FileType   models.FileType
	Rules      validator.Rules
	Transforms []extract.TransformPair
}

// Vitals concatenates the source's files into one record stream,
// extracts thresholded samples, and keeps only samples whose normalized
// instant falls inside the window. The window re-check matters for UTC
// sources: conversion into the profile timezone can move a sample
// across a date boundary after the raw timestamp already passed.
func Vitals(src VitalsSource, log *slog.Logger) (iter.Seq2[models.VitalsRecord, error], error) {
	read, err := reader.ForType(src.FileType)
	if err != nil {
		return nil, err
	}
	samples := extract.Vitals(concat(src.Files, read), src.Params, log)
	return func(yield func(models.VitalsRecord, error) bool) {
		for v, err := range samples {
			if err != nil {
				yield(models.VitalsRecord{}, err)
				return
			}
			if !src.Window.Contains(v.Timestamp) {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}, nil
}

// Sleep concatenates the source's sleep files into one record stream
// and extracts normalized sleep sessions.
func Sleep(src SleepSource) (iter.Seq2[models.SleepRecord, error], error) {
	read, err := reader.ForType(src.FileType)
	if err != nil {
		return nil, err
	}
	return extract.Sleep(concat(src.Files, read), src.Rules, src.Transforms), nil
}

// SleepWith is like Sleep but reads files through an explicit reader,
// for formats whose sleep files need assembly beyond row decoding.
func SleepWith(src SleepSource, read reader.Func) iter.Seq2[models.SleepRecord, error] {
	return extract.Sleep(concat(src.Files, read), src.Rules, src.Transforms)
}

// concat chains per-file sequences in file order. Each file is opened
// only when its turn comes and closed before the next opens; an error
// from any file terminates the whole stream.
func concat(files []string, read reader.Func) iter.Seq2[models.RawRecord, error] {
	return func(yield func(models.RawRecord, error) bool) {
		for _, path := range files {
			for rec, err := range read(path) {
				if !yield(rec, err) {
					return
				}
				if err != nil {
					return
				}
			}
		}
	}
}
