package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// ListForPeriod implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListForPeriod(ctx context.Context, p period.Period) ([]attendance.Punch, error) {
	q := GetQuerier(ctx, r.db)

	// The stored date is free text. Rows in a recognised shape are narrowed to
	// the period by pattern; rows in any other shape are always returned so the
	// strict parse rejects them instead of dropping them.
	query := `
		SELECT id, emp_code, date, attendance_status
		FROM attendances
		WHERE corp_id = $1 AND company_name = $2
		  AND (
			TRIM(date) LIKE $3 OR TRIM(date) LIKE $4 OR TRIM(date) LIKE $5
			OR (TRIM(date) !~ '^\d{1,2}/\d{1,2}/\d{4}$' AND TRIM(date) !~ '^\d{4}-\d{2}-\d{2}')
		  )
		ORDER BY emp_code, created_at, id
	`

	dayFirstPadded := fmt.Sprintf("%%/%02d/%04d", p.Month, p.Year)
	dayFirstBare := fmt.Sprintf("%%/%d/%04d", p.Month, p.Year)
	iso := fmt.Sprintf("%04d-%02d-%%", p.Year, p.Month)

	rows, err := q.Query(ctx, query, p.CorpID, p.CompanyName, dayFirstPadded, dayFirstBare, iso)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	start, end := p.Bounds()
	var punches []attendance.Punch
	for rows.Next() {
		var raw attendance.RawPunch
		if err := rows.Scan(&raw.ID, &raw.EmpCode, &raw.Date, &raw.AttendanceStatus); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}

		punch, err := raw.Normalize()
		if err != nil {
			return nil, err
		}
		if !dateutil.InRange(punch.Date, start, end) {
			continue
		}
		punches = append(punches, punch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return punches, nil
}
