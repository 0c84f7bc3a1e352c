package summary

import (
	"context"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
)

type AttendanceSummaryRepository interface {
	CountByPeriod(ctx context.Context, p period.Period) (int, error)
	ListByPeriod(ctx context.Context, p period.Period) ([]AttendanceSummary, error)
	// LockByPeriod lists like ListByPeriod and locks the rows until the
	// surrounding transaction ends.
	LockByPeriod(ctx context.Context, p period.Period) ([]AttendanceSummary, error)
	// ListPeriods returns every company period of the month that has summaries.
	ListPeriods(ctx context.Context, month, year int) ([]period.Period, error)

	// CreateBatch inserts all rows or none. A duplicate row yields ErrSummaryAlreadyExists.
	CreateBatch(ctx context.Context, summaries []AttendanceSummary) error
	UpdateCounters(ctx context.Context, s AttendanceSummary) (AttendanceSummary, error)

	GetByID(ctx context.Context, id, corpID string) (AttendanceSummary, error)
	List(ctx context.Context, corpID string, filter SummaryFilter) ([]AttendanceSummary, int64, error)
	Delete(ctx context.Context, id, corpID string) error
}
