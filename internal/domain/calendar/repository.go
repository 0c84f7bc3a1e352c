package calendar

import "context"

type HolidayRepository interface {
	// ListByMonth returns the tenant's holidays falling in the given month.
	ListByMonth(ctx context.Context, corpID string, month, year int) ([]Holiday, error)
}

type ShiftRepository interface {
	GetCompanyAssignment(ctx context.Context, corpID, companyName string) (CompanyShiftAssignment, error)
	GetPolicy(ctx context.Context, corpID, policyID string) (ShiftPolicy, error)
	ListWeeklySchedule(ctx context.Context, policyID string) ([]ShiftWeeklySchedule, error)
}
