package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks an analysis whose optional input column is absent.
	ErrUnavailable = errors.New("analysis unavailable")
	// ErrEmptyTable marks an analysis that needs at least one row.
	ErrEmptyTable = errors.New("table has no rows")
)

// NotFoundError means the input path does not resolve to a file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file %q not found", e.Path)
}

// FormatError means the input exists but is not a readable table.
type FormatError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("input file %q: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("input file %q: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Cause }

// SchemaError lists every required column missing from a table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// CleaningError means a mandatory column cannot be given safe values.
type CleaningError struct {
	Column string
	Reason string
}

func (e *CleaningError) Error() string {
	return fmt.Sprintf("cannot clean column %q: %s", e.Column, e.Reason)
}

// AggregationError is the failure of a single analysis. It never aborts a run.
type AggregationError struct {
	Op    string
	Cause error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *AggregationError) Unwrap() error { return e.Cause }

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	var (
		nf *NotFoundError
		fe *FormatError
		se *SchemaError
		ce *CleaningError
	)
	return errors.As(err, &nf) || errors.As(err, &fe) ||
		errors.As(err, &se) || errors.As(err, &ce)
}
