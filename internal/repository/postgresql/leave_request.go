package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListByCompany implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByCompany(ctx context.Context, corpID, companyName string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, corp_id, company_name, empcode, from_date, to_date, status
		FROM leave_applies
		WHERE corp_id = $1 AND company_name = $2
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, corpID, companyName)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var raw leave.RawLeaveRequest
		if err := rows.Scan(&raw.ID, &raw.CorpID, &raw.CompanyName, &raw.EmpCode, &raw.FromDate, &raw.ToDate, &raw.Status); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}

		req, err := raw.Normalize()
		if err != nil {
			slog.Warn("Skipping unparseable leave request",
				"leave_request_id", raw.ID,
				"emp_code", raw.EmpCode,
				"corp_id", corpID,
				"error", err,
			)
			continue
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}
