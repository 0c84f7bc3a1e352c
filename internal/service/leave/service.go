package leave

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/jwt"
)

type LeaveServiceImpl struct {
	leaveRequestRepo leave.LeaveRequestRepository
}

func NewLeaveService(leaveRequestRepo leave.LeaveRequestRepository) leave.Service {
	return &LeaveServiceImpl{leaveRequestRepo: leaveRequestRepo}
}

// Resolve implements leave.StatusResolver.
func (s *LeaveServiceImpl) Resolve(ctx context.Context, p period.Period) (leave.StatusMap, error) {
	requests, err := s.leaveRequestRepo.ListByCompany(ctx, p.CorpID, p.CompanyName)
	if err != nil {
		return nil, err
	}
	return BuildStatusMap(requests, p), nil
}

// BuildStatusMap spreads each request over the days it covers inside the
// period. Later requests overwrite earlier ones on the same day.
func BuildStatusMap(requests []leave.LeaveRequest, p period.Period) leave.StatusMap {
	statusMap := make(leave.StatusMap)
	start, end := p.Bounds()

	for _, req := range requests {
		if req.IsInverted() {
			slog.Warn("Skipping leave request with from_date after to_date",
				"leave_request_id", req.ID,
				"emp_code", req.EmpCode,
				"from_date", req.From.Format("2006-01-02"),
				"to_date", req.To.Format("2006-01-02"),
			)
			continue
		}
		if !req.Overlaps(start, end) {
			continue
		}

		from, to := req.From, req.To
		if from.Before(start) {
			from = start
		}
		if to.After(end) {
			to = end
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			statusMap.Set(req.EmpCode, d, req.Status)
		}
	}

	return statusMap
}

// GetStatusMap implements leave.Service.
func (s *LeaveServiceImpl) GetStatusMap(ctx context.Context, req period.Request) (leave.StatusMapResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.StatusMapResponse{}, err
	}

	p, err := req.Validate(claims.CorpID)
	if err != nil {
		return leave.StatusMapResponse{}, err
	}

	statusMap, err := s.Resolve(ctx, p)
	if err != nil {
		return leave.StatusMapResponse{}, err
	}

	return leave.StatusMapResponse{
		CompanyName: p.CompanyName,
		Month:       p.Month,
		MonthName:   p.MonthName(),
		Year:        p.Year,
		Employees:   statusMap.ToEmployeeLeaveDays(),
	}, nil
}
