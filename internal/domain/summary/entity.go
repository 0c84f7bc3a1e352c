package summary

import (
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/shopspring/decimal"
)

// AttendanceSummary is the persisted attendance snapshot of one employee for
// one period. At most one exists per (corp, company, employee, month, year).
type AttendanceSummary struct {
	ID                 string
	CorpID             string
	CompanyName        string
	EmpCode            string
	Month              int
	Year               int
	TotalPresent       int
	WorkingDays        int
	Holidays           int
	WeekOff            int
	Leave              int
	PaidDays           int
	Absent             int
	AbsentWithLeave    int
	AbsentWithoutLeave int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s AttendanceSummary) Period() period.Period {
	return period.Period{CorpID: s.CorpID, CompanyName: s.CompanyName, Month: s.Month, Year: s.Year}
}

// Tally holds the day counts of one employee over the working days of a period.
type Tally struct {
	EmpCode            string
	Present            int
	Leave              int
	AbsentWithLeave    int
	AbsentWithoutLeave int
}

func (t Tally) Absent() int {
	return t.AbsentWithLeave + t.AbsentWithoutLeave
}

// Apply overwrites the calendar and attendance counters of s.
func (s *AttendanceSummary) Apply(t Tally, nw calendar.NonWorkingDays) {
	s.WorkingDays = nw.WorkingDays()
	s.Holidays = nw.HolidayCount()
	s.WeekOff = nw.WeekOffCount()
	s.TotalPresent = t.Present
	s.Leave = t.Leave
	s.AbsentWithLeave = t.AbsentWithLeave
	s.AbsentWithoutLeave = t.AbsentWithoutLeave
	s.Absent = t.Absent()
	s.PaidDays = s.WorkingDays - t.AbsentWithoutLeave
}

// NewAttendanceSummary builds an unsaved summary for the employee of t.
func NewAttendanceSummary(p period.Period, t Tally, nw calendar.NonWorkingDays) AttendanceSummary {
	s := AttendanceSummary{
		CorpID:      p.CorpID,
		CompanyName: p.CompanyName,
		EmpCode:     t.EmpCode,
		Month:       p.Month,
		Year:        p.Year,
	}
	s.Apply(t, nw)
	return s
}

// PayableRatio is PaidDays / WorkingDays rounded to four places.
func (s AttendanceSummary) PayableRatio() decimal.Decimal {
	if s.WorkingDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.PaidDays)).
		Div(decimal.NewFromInt(int64(s.WorkingDays))).
		Round(4)
}
