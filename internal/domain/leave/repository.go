package leave

import "context"

type LeaveRequestRepository interface {
	// ListByCompany returns every parseable leave request of the company in
	// insertion order. Dates are stored as free text so no date filter is applied.
	ListByCompany(ctx context.Context, corpID, companyName string) ([]LeaveRequest, error)
}
