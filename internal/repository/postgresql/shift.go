package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) calendar.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

// GetCompanyAssignment implements calendar.ShiftRepository.
func (r *shiftRepositoryImpl) GetCompanyAssignment(ctx context.Context, corpID, companyName string) (calendar.CompanyShiftAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT corp_id, company_name, shift_policy_id
		FROM company_shift_policies
		WHERE corp_id = $1 AND company_name = $2
	`

	var a calendar.CompanyShiftAssignment
	err := q.QueryRow(ctx, query, corpID, companyName).Scan(&a.CorpID, &a.CompanyName, &a.ShiftPolicyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.CompanyShiftAssignment{}, calendar.ErrShiftAssignmentNotFound
		}
		return calendar.CompanyShiftAssignment{}, fmt.Errorf("failed to get company shift assignment: %w", err)
	}

	return a, nil
}

// GetPolicy implements calendar.ShiftRepository.
func (r *shiftRepositoryImpl) GetPolicy(ctx context.Context, corpID, policyID string) (calendar.ShiftPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, corp_id, name
		FROM shift_policies
		WHERE id = $1 AND corp_id = $2
	`

	var p calendar.ShiftPolicy
	err := q.QueryRow(ctx, query, policyID, corpID).Scan(&p.ID, &p.CorpID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.ShiftPolicy{}, calendar.ErrShiftPolicyNotFound
		}
		return calendar.ShiftPolicy{}, fmt.Errorf("failed to get shift policy: %w", err)
	}

	return p, nil
}

// ListWeeklySchedule implements calendar.ShiftRepository.
func (r *shiftRepositoryImpl) ListWeeklySchedule(ctx context.Context, policyID string) ([]calendar.ShiftWeeklySchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT shift_policy_id, week_no, day_name, time
		FROM shift_weekly_schedules
		WHERE shift_policy_id = $1
		ORDER BY week_no, day_name
	`

	rows, err := q.Query(ctx, query, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly schedule: %w", err)
	}
	defer rows.Close()

	var schedule []calendar.ShiftWeeklySchedule
	for rows.Next() {
		var s calendar.ShiftWeeklySchedule
		if err := rows.Scan(&s.ShiftPolicyID, &s.WeekNo, &s.DayName, &s.Time); err != nil {
			return nil, fmt.Errorf("failed to scan weekly schedule: %w", err)
		}
		schedule = append(schedule, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly schedule: %w", err)
	}

	return schedule, nil
}
