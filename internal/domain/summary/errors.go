package summary

import (
	"errors"
	"fmt"
)

var (
	ErrSummaryNotFound          = errors.New("attendance summary not found")
	ErrSummaryAlreadyExists     = errors.New("attendance summary already exists for this period")
	ErrNoAttendanceData         = errors.New("no attendance data found for this period")
	ErrNoSummariesToRecalculate = errors.New("no attendance summaries to recalculate for this period")
	ErrInvalidWorkbook          = errors.New("invalid attendance summary workbook")
	ErrImportFileTooLarge       = errors.New("import file too large")
)

// ComputationError reports an unexpected failure while building summaries.
// The batch it belongs to is rolled back.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
