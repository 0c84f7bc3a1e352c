package summary

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
)

// Aggregate counts each employee's punches over the working days of the
// period described by nw. Every employee with at least one punch in the
// month gets a tally, even when all of their punches fall on non-working
// days. When an employee has several punches on one day the last one wins.
// Tallies are sorted by employee code.
func Aggregate(punches []attendance.Punch, nw calendar.NonWorkingDays, leaves leave.StatusMap) []summary.Tally {
	start, end := dateutil.MonthBounds(nw.Month, nw.Year)

	days := make(map[string]map[time.Time]attendance.Status)
	for _, p := range punches {
		if p.EmpCode == "" || !dateutil.InRange(p.Date, start, end) {
			continue
		}
		byDay, ok := days[p.EmpCode]
		if !ok {
			byDay = make(map[time.Time]attendance.Status)
			days[p.EmpCode] = byDay
		}
		date := dateutil.DateOnly(p.Date)
		if nw.IsNonWorking(date) {
			continue
		}
		byDay[date] = p.AttendanceStatus
	}

	tallies := make([]summary.Tally, 0, len(days))
	for empCode, byDay := range days {
		t := summary.Tally{EmpCode: empCode}
		for date, status := range byDay {
			classify(&t, status, leaves, empCode, date)
		}
		tallies = append(tallies, t)
	}

	sort.Slice(tallies, func(i, j int) bool { return tallies[i].EmpCode < tallies[j].EmpCode })
	return tallies
}

// classify resolves one working day, leave decisions first.
func classify(t *summary.Tally, status attendance.Status, leaves leave.StatusMap, empCode string, date time.Time) {
	if leaveStatus, ok := leaves.Lookup(empCode, date); ok {
		if leaveStatus == leave.StatusApproved {
			t.Leave++
		} else {
			t.AbsentWithLeave++
		}
		return
	}

	switch status {
	case attendance.StatusPresent:
		t.Present++
	case attendance.StatusLeave:
		t.Leave++
	default:
		t.AbsentWithoutLeave++
	}
}
