package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const summaryColumns = `
	id, corp_id, company_name, emp_code, month, year,
	total_present, working_days, holidays, week_off, leave, paid_days,
	absent, absent_with_leave, absent_without_leave, created_at, updated_at
`

type attendanceSummaryRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceSummaryRepository(db *database.DB) summary.AttendanceSummaryRepository {
	return &attendanceSummaryRepositoryImpl{db: db}
}

func scanSummary(row pgx.Row) (summary.AttendanceSummary, error) {
	var s summary.AttendanceSummary
	err := row.Scan(
		&s.ID, &s.CorpID, &s.CompanyName, &s.EmpCode, &s.Month, &s.Year,
		&s.TotalPresent, &s.WorkingDays, &s.Holidays, &s.WeekOff, &s.Leave, &s.PaidDays,
		&s.Absent, &s.AbsentWithLeave, &s.AbsentWithoutLeave, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func collectSummaries(rows pgx.Rows) ([]summary.AttendanceSummary, error) {
	defer rows.Close()

	var summaries []summary.AttendanceSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance summaries: %w", err)
	}
	return summaries, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CountByPeriod implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) CountByPeriod(ctx context.Context, p period.Period) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM attendance_summaries
		WHERE corp_id = $1 AND company_name = $2 AND month = $3 AND year = $4
	`

	var count int
	if err := q.QueryRow(ctx, query, p.CorpID, p.CompanyName, p.Month, p.Year).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance summaries: %w", err)
	}
	return count, nil
}

const periodQuery = `SELECT ` + summaryColumns + `
	FROM attendance_summaries
	WHERE corp_id = $1 AND company_name = $2 AND month = $3 AND year = $4
	ORDER BY emp_code
`

// ListByPeriod implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) ListByPeriod(ctx context.Context, p period.Period) ([]summary.AttendanceSummary, error) {
	return r.listByPeriod(ctx, periodQuery, p)
}

// LockByPeriod implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) LockByPeriod(ctx context.Context, p period.Period) ([]summary.AttendanceSummary, error) {
	return r.listByPeriod(ctx, periodQuery+" FOR UPDATE", p)
}

func (r *attendanceSummaryRepositoryImpl) listByPeriod(ctx context.Context, query string, p period.Period) ([]summary.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, p.CorpID, p.CompanyName, p.Month, p.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	return collectSummaries(rows)
}

// ListPeriods implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) ListPeriods(ctx context.Context, month, year int) ([]period.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT corp_id, company_name
		FROM attendance_summaries
		WHERE month = $1 AND year = $2
		ORDER BY corp_id, company_name
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list summary periods: %w", err)
	}
	defer rows.Close()

	var periods []period.Period
	for rows.Next() {
		p := period.Period{Month: month, Year: year}
		if err := rows.Scan(&p.CorpID, &p.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan summary period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary periods: %w", err)
	}
	return periods, nil
}

// CreateBatch implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) CreateBatch(ctx context.Context, summaries []summary.AttendanceSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_summaries (
			id, corp_id, company_name, emp_code, month, year,
			total_present, working_days, holidays, week_off, leave, paid_days,
			absent, absent_with_leave, absent_without_leave
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	batch := &pgx.Batch{}
	for _, s := range summaries {
		batch.Queue(query,
			s.ID, s.CorpID, s.CompanyName, s.EmpCode, s.Month, s.Year,
			s.TotalPresent, s.WorkingDays, s.Holidays, s.WeekOff, s.Leave, s.PaidDays,
			s.Absent, s.AbsentWithLeave, s.AbsentWithoutLeave,
		)
	}

	br := q.SendBatch(ctx, batch)
	for i := range summaries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if isUniqueViolation(err) {
				return summary.ErrSummaryAlreadyExists
			}
			return fmt.Errorf("failed to insert attendance summary for %s: %w", summaries[i].EmpCode, err)
		}
	}
	if err := br.Close(); err != nil {
		if isUniqueViolation(err) {
			return summary.ErrSummaryAlreadyExists
		}
		return fmt.Errorf("failed to insert attendance summaries: %w", err)
	}

	return nil
}

// UpdateCounters implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) UpdateCounters(ctx context.Context, s summary.AttendanceSummary) (summary.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_summaries SET
			total_present = $3,
			working_days = $4,
			holidays = $5,
			week_off = $6,
			leave = $7,
			paid_days = $8,
			absent = $9,
			absent_with_leave = $10,
			absent_without_leave = $11,
			updated_at = NOW()
		WHERE id = $1 AND corp_id = $2
		RETURNING ` + summaryColumns

	updated, err := scanSummary(q.QueryRow(ctx, query,
		s.ID, s.CorpID,
		s.TotalPresent, s.WorkingDays, s.Holidays, s.WeekOff, s.Leave, s.PaidDays,
		s.Absent, s.AbsentWithLeave, s.AbsentWithoutLeave,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary.AttendanceSummary{}, summary.ErrSummaryNotFound
		}
		return summary.AttendanceSummary{}, fmt.Errorf("failed to update attendance summary: %w", err)
	}

	return updated, nil
}

// GetByID implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) GetByID(ctx context.Context, id, corpID string) (summary.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + `
		FROM attendance_summaries
		WHERE id = $1 AND corp_id = $2
	`

	s, err := scanSummary(q.QueryRow(ctx, query, id, corpID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary.AttendanceSummary{}, summary.ErrSummaryNotFound
		}
		return summary.AttendanceSummary{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}

	return s, nil
}

// List implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) List(ctx context.Context, corpID string, filter summary.SummaryFilter) ([]summary.AttendanceSummary, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM attendance_summaries
		WHERE corp_id = $1
	`
	args := []interface{}{corpID}
	argIdx := 2

	if filter.CompanyName != nil {
		baseQuery += fmt.Sprintf(" AND company_name = $%d", argIdx)
		args = append(args, *filter.CompanyName)
		argIdx++
	}
	if filter.EmpCode != nil {
		baseQuery += fmt.Sprintf(" AND emp_code = $%d", argIdx)
		args = append(args, *filter.EmpCode)
		argIdx++
	}
	if filter.Month != nil {
		baseQuery += fmt.Sprintf(" AND month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance summaries: %w", err)
	}

	// Sort
	sortOrder := "ASC"
	if filter.SortOrder == "desc" {
		sortOrder = "DESC"
	}
	orderBy := "emp_code " + sortOrder
	switch filter.SortBy {
	case "period":
		orderBy = fmt.Sprintf("year %s, month %s, emp_code", sortOrder, sortOrder)
	case "paid_days":
		orderBy = fmt.Sprintf("paid_days %s, emp_code", sortOrder)
	case "created_at":
		orderBy = fmt.Sprintf("created_at %s, emp_code", sortOrder)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, summaryColumns, baseQuery, orderBy, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance summaries: %w", err)
	}

	summaries, err := collectSummaries(rows)
	if err != nil {
		return nil, 0, err
	}

	return summaries, totalCount, nil
}

// Delete implements summary.AttendanceSummaryRepository.
func (r *attendanceSummaryRepositoryImpl) Delete(ctx context.Context, id, corpID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_summaries WHERE id = $1 AND corp_id = $2`, id, corpID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return summary.ErrSummaryNotFound
	}

	return nil
}
