package leave

import (
	"context"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
)

// StatusResolver builds the per-employee, per-day leave status of a period.
type StatusResolver interface {
	Resolve(ctx context.Context, p period.Period) (StatusMap, error)
}

type Service interface {
	StatusResolver
	GetStatusMap(ctx context.Context, req period.Request) (StatusMapResponse, error)
}
