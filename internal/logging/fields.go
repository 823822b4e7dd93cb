package logging

import "log/slog"

// Common field names for consistent logging across the pipeline.
const (
	FieldFormat = "format"
	FieldKind   = "kind"
	FieldFile   = "file"
	FieldCount  = "count"
	FieldError  = "error"
)

// Format returns a slog attribute for the source format name.
func Format(name string) slog.Attr {
	return slog.String(FieldFormat, name)
}

// Kind returns a slog attribute for the data kind label.
func Kind(label string) slog.Attr {
	return slog.String(FieldKind, label)
}

// File returns a slog attribute for a source file path.
func File(path string) slog.Attr {
	return slog.String(FieldFile, path)
}

// Count returns a slog attribute for a record count.
func Count(n int) slog.Attr {
	return slog.Int(FieldCount, n)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
