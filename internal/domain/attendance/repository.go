package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
)

type AttendanceRepository interface {
	// ListForPeriod returns the punches dated inside the period. A date that
	// cannot be parsed fails the whole call.
	ListForPeriod(ctx context.Context, p period.Period) ([]Punch, error)
}
