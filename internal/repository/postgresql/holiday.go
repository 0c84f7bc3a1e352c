package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ListByMonth implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) ListByMonth(ctx context.Context, corpID string, month, year int) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, corp_id, name, holiday_date
		FROM holidays
		WHERE corp_id = $1 AND holiday_date BETWEEN $2 AND $3
		ORDER BY holiday_date
	`

	start, end := dateutil.MonthBounds(month, year)
	rows, err := q.Query(ctx, query, corpID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		if err := rows.Scan(&h.ID, &h.CorpID, &h.Name, &h.Date); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		h.Date = dateutil.DateOnly(h.Date)
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}

	return holidays, nil
}
