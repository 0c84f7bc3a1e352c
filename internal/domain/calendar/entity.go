package calendar

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
)

type Holiday struct {
	ID     string
	CorpID string
	Name   string
	Date   time.Time
}

type ShiftPolicy struct {
	ID     string
	CorpID string
	Name   string
}

// CompanyShiftAssignment binds a company of a tenant to its shift policy.
type CompanyShiftAssignment struct {
	CorpID        string
	CompanyName   string
	ShiftPolicyID string
}

const (
	OffFullDay = "Full Day"
	OffHalfDay = "Half Day"
)

// ShiftWeeklySchedule marks a weekday of a given week-of-month as off.
type ShiftWeeklySchedule struct {
	ShiftPolicyID string
	WeekNo        string // "Week 1" .. "Week 5"
	DayName       string // "Monday" .. "Sunday"
	Time          string // "Full Day", "Half Day"
}

// Week returns the numeric bucket of WeekNo.
func (s ShiftWeeklySchedule) Week() (int, bool) {
	raw := strings.TrimSpace(s.WeekNo)
	if len(raw) < 5 || !strings.EqualFold(raw[:4], "week") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw[4:]))
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

// Weekday resolves DayName, case-insensitively.
func (s ShiftWeeklySchedule) Weekday() (time.Weekday, bool) {
	name := strings.TrimSpace(s.DayName)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

func (s ShiftWeeklySchedule) IsFullDay() bool {
	return strings.EqualFold(strings.TrimSpace(s.Time), OffFullDay)
}

func (s ShiftWeeklySchedule) IsHalfDay() bool {
	return strings.EqualFold(strings.TrimSpace(s.Time), OffHalfDay)
}

// DateSet is a set of calendar days normalized to midnight UTC.
type DateSet map[time.Time]struct{}

func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d time.Time) {
	s[dateutil.DateOnly(d)] = struct{}{}
}

func (s DateSet) Contains(d time.Time) bool {
	_, ok := s[dateutil.DateOnly(d)]
	return ok
}

func (s DateSet) Len() int {
	return len(s)
}

func (s DateSet) Union(other DateSet) DateSet {
	out := make(DateSet, len(s)+len(other))
	for d := range s {
		out[d] = struct{}{}
	}
	for d := range other {
		out[d] = struct{}{}
	}
	return out
}

// Difference returns the dates of s that are not in other.
func (s DateSet) Difference(other DateSet) DateSet {
	out := make(DateSet, len(s))
	for d := range s {
		if _, ok := other[d]; !ok {
			out[d] = struct{}{}
		}
	}
	return out
}

func (s DateSet) Sorted() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// NonWorkingDays is the resolved calendar of one period.
type NonWorkingDays struct {
	Month           int
	Year            int
	HolidayDates    DateSet
	WeekOffDates    DateSet
	HalfDayWeekOffs DateSet
	UsedFallback    bool
}

// All is the deduplicated union of holidays and week-offs.
func (n NonWorkingDays) All() DateSet {
	return n.HolidayDates.Union(n.WeekOffDates)
}

func (n NonWorkingDays) IsNonWorking(d time.Time) bool {
	return n.HolidayDates.Contains(d) || n.WeekOffDates.Contains(d)
}

func (n NonWorkingDays) DaysInMonth() int {
	return dateutil.DaysInMonth(n.Month, n.Year)
}

func (n NonWorkingDays) WorkingDays() int {
	return n.DaysInMonth() - n.All().Len()
}

// HolidayCount counts declared holidays of the month.
func (n NonWorkingDays) HolidayCount() int {
	return n.HolidayDates.Len()
}

// WeekOffCount counts week-offs that are not already holidays, so that
// holidays, week-offs and working days add up to the days of the month.
func (n NonWorkingDays) WeekOffCount() int {
	return n.WeekOffDates.Difference(n.HolidayDates).Len()
}
