package calendar

import (
	"context"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
)

// Resolver computes the non-working days of a period.
type Resolver interface {
	Resolve(ctx context.Context, p period.Period) (NonWorkingDays, error)
}

type Service interface {
	Resolver
	GetNonWorkingDays(ctx context.Context, req period.Request) (NonWorkingDaysResponse, error)
}
