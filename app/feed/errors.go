package feed

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnparseableDate      = errors.New("unparseable date")
	ErrUnknownFormat        = errors.New("unknown feed format")
)

// FormatError is a failure to render or persist one output format.
type FormatError struct {
	Format Format
	Path   string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Format, e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// WriteError aggregates the formats that failed during a single write pass.
// Formats not listed were written successfully.
type WriteError struct {
	Failures []*FormatError
}

func (e *WriteError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("failed to write %d feed format(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *WriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

func (e *WriteError) Formats() []Format {
	formats := make([]Format, 0, len(e.Failures))
	for _, f := range e.Failures {
		formats = append(formats, f.Format)
	}
	return formats
}
