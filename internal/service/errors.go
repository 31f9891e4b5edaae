package service

import (
	"errors"
	"fmt"
)

// Error classes. Handlers switch on these with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrDatasetNotFound   = fmt.Errorf("dataset %w", ErrNotFound)
	ErrReportNotFound    = fmt.Errorf("report %w", ErrNotFound)
	ErrFarmerNotFound    = fmt.Errorf("farmer %w", ErrNotFound)
	ErrAnalyticsNotReady = fmt.Errorf("%w: analytics not ready yet", ErrPrecondition)
	ErrNarrativeNotReady = fmt.Errorf("%w: AI report not generated yet", ErrPrecondition)
	ErrNoCSVContent      = fmt.Errorf("%w: no CSV content stored for this dataset", ErrPrecondition)
	ErrNotCSV            = fmt.Errorf("%w: only CSV files are supported", ErrInvalidInput)
	ErrEmptyFile         = fmt.Errorf("%w: no file provided", ErrInvalidInput)
	ErrFileTooLarge      = fmt.Errorf("%w: file too large", ErrInvalidInput)
)

// PersistenceError reports a failed store operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
