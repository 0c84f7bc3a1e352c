package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/jwt"
)

type CalendarServiceImpl struct {
	holidayRepo calendar.HolidayRepository
	shiftRepo   calendar.ShiftRepository
}

func NewCalendarService(holidayRepo calendar.HolidayRepository, shiftRepo calendar.ShiftRepository) calendar.Service {
	return &CalendarServiceImpl{
		holidayRepo: holidayRepo,
		shiftRepo:   shiftRepo,
	}
}

// Resolve implements calendar.Resolver.
func (s *CalendarServiceImpl) Resolve(ctx context.Context, p period.Period) (calendar.NonWorkingDays, error) {
	result := calendar.NonWorkingDays{
		Month:           p.Month,
		Year:            p.Year,
		HolidayDates:    calendar.NewDateSet(),
		HalfDayWeekOffs: calendar.NewDateSet(),
	}

	holidays, err := s.holidayRepo.ListByMonth(ctx, p.CorpID, p.Month, p.Year)
	if err != nil {
		return calendar.NonWorkingDays{}, err
	}
	start, end := p.Bounds()
	for _, h := range holidays {
		if dateutil.InRange(h.Date, start, end) {
			result.HolidayDates.Add(h.Date)
		}
	}

	schedule, err := s.weeklySchedule(ctx, p)
	if err != nil {
		return calendar.NonWorkingDays{}, err
	}

	if len(schedule) == 0 {
		result.WeekOffDates = FallbackWeekends(p.Month, p.Year)
		result.UsedFallback = true
		return result, nil
	}

	result.WeekOffDates, result.HalfDayWeekOffs = WeekOffsFromSchedule(schedule, p.Month, p.Year)
	return result, nil
}

// weeklySchedule returns the company's weekly off rows, or none when the
// Saturday/Sunday fallback applies.
func (s *CalendarServiceImpl) weeklySchedule(ctx context.Context, p period.Period) ([]calendar.ShiftWeeklySchedule, error) {
	assignment, err := s.shiftRepo.GetCompanyAssignment(ctx, p.CorpID, p.CompanyName)
	if err != nil {
		if errors.Is(err, calendar.ErrShiftAssignmentNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if _, err := s.shiftRepo.GetPolicy(ctx, p.CorpID, assignment.ShiftPolicyID); err != nil {
		if errors.Is(err, calendar.ErrShiftPolicyNotFound) {
			return nil, fmt.Errorf("%w: %s assigned to %s", calendar.ErrShiftPolicyNotFound, assignment.ShiftPolicyID, p.CompanyName)
		}
		return nil, err
	}

	return s.shiftRepo.ListWeeklySchedule(ctx, assignment.ShiftPolicyID)
}

// FallbackWeekends returns every Saturday and Sunday of the month.
func FallbackWeekends(month, year int) calendar.DateSet {
	out := calendar.NewDateSet()
	start, end := dateutil.MonthBounds(month, year)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			out.Add(d)
		}
	}
	return out
}

type weekdaySlot struct {
	week int
	day  time.Weekday
}

// WeekOffsFromSchedule walks the month and marks every day whose
// (week-of-month, weekday) slot is scheduled off. Only "Full Day" rows make a
// date non-working; "Half Day" rows are reported separately.
func WeekOffsFromSchedule(schedule []calendar.ShiftWeeklySchedule, month, year int) (calendar.DateSet, calendar.DateSet) {
	fifthWeek := dateutil.HasFifthWeek(month, year)

	full := make(map[weekdaySlot]bool)
	half := make(map[weekdaySlot]bool)
	for _, row := range schedule {
		week, ok := row.Week()
		if !ok {
			slog.Warn("Ignoring weekly schedule row with invalid week", "shift_policy_id", row.ShiftPolicyID, "week_no", row.WeekNo)
			continue
		}
		day, ok := row.Weekday()
		if !ok {
			slog.Warn("Ignoring weekly schedule row with invalid day", "shift_policy_id", row.ShiftPolicyID, "day_name", row.DayName)
			continue
		}
		if week == 5 && !fifthWeek {
			continue
		}

		slot := weekdaySlot{week: week, day: day}
		switch {
		case row.IsFullDay():
			full[slot] = true
		case row.IsHalfDay():
			half[slot] = true
		}
	}

	fullDates := calendar.NewDateSet()
	halfDates := calendar.NewDateSet()
	start, end := dateutil.MonthBounds(month, year)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		slot := weekdaySlot{week: dateutil.WeekOfMonth(d), day: d.Weekday()}
		if full[slot] {
			fullDates.Add(d)
		} else if half[slot] {
			halfDates.Add(d)
		}
	}

	return fullDates, halfDates
}

// GetNonWorkingDays implements calendar.Service.
func (s *CalendarServiceImpl) GetNonWorkingDays(ctx context.Context, req period.Request) (calendar.NonWorkingDaysResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return calendar.NonWorkingDaysResponse{}, err
	}

	p, err := req.Validate(claims.CorpID)
	if err != nil {
		return calendar.NonWorkingDaysResponse{}, err
	}

	nw, err := s.Resolve(ctx, p)
	if err != nil {
		return calendar.NonWorkingDaysResponse{}, err
	}

	return calendar.NonWorkingDaysResponse{
		CompanyName:     p.CompanyName,
		Month:           p.Month,
		MonthName:       p.MonthName(),
		Year:            p.Year,
		DaysInMonth:     nw.DaysInMonth(),
		WorkingDays:     nw.WorkingDays(),
		UsedFallback:    nw.UsedFallback,
		Holidays:        calendar.FormatDates(nw.HolidayDates),
		WeekOffs:        calendar.FormatDates(nw.WeekOffDates),
		HalfDayWeekOffs: calendar.FormatDates(nw.HalfDayWeekOffs),
	}, nil
}
