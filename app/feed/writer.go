package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Writer struct {
	outputDir string
	generator *Generator
}

func NewWriter(outputDir string, generator *Generator) *Writer {
	return &Writer{outputDir: outputDir, generator: generator}
}

// Path returns the fixed destination of a format.
func (w *Writer) Path(format Format) (string, error) {
	name, err := FileName(format)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.outputDir, name), nil
}

// Run renders and writes every format, overwriting previous output. A failure
// in one format does not stop the others; failures are returned together as
// a *WriteError and the formats that were written are returned.
func (w *Writer) Run(envelope Envelope) ([]Format, error) {
	written := make([]Format, 0, len(Formats))
	var failures []*FormatError

	for _, format := range Formats {
		path, err := w.write(envelope, format)
		if err != nil {
			slog.Error("Failed to write feed", "format", format, "path", path, "error", err)
			failures = append(failures, &FormatError{Format: format, Path: path, Err: err})
			continue
		}

		slog.Debug("Feed written", "format", format, "path", path, "entries", len(envelope.Entries))
		written = append(written, format)
	}

	if len(failures) > 0 {
		return written, &WriteError{Failures: failures}
	}

	return written, nil
}

func (w *Writer) write(envelope Envelope, format Format) (string, error) {
	path, err := w.Path(format)
	if err != nil {
		return "", err
	}

	data, err := w.generator.Run(envelope, format)
	if err != nil {
		return path, fmt.Errorf("failed to render feed: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}
