package leave

import "sort"

type LeaveDay struct {
	Date   string `json:"date"`
	Status Status `json:"status"`
}

type EmployeeLeaveDays struct {
	EmpCode string     `json:"emp_code"`
	Days    []LeaveDay `json:"days"`
}

type StatusMapResponse struct {
	CompanyName string              `json:"company_name"`
	Month       int                 `json:"month"`
	MonthName   string              `json:"month_name"`
	Year        int                 `json:"year"`
	Employees   []EmployeeLeaveDays `json:"employees"`
}

// ToEmployeeLeaveDays flattens m into a deterministic, sorted list.
func (m StatusMap) ToEmployeeLeaveDays() []EmployeeLeaveDays {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]EmployeeLeaveDays, 0, len(codes))
	for _, code := range codes {
		days := make([]LeaveDay, 0, len(m[code]))
		for d, status := range m[code] {
			days = append(days, LeaveDay{Date: d.Format("2006-01-02"), Status: status})
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
		out = append(out, EmployeeLeaveDays{EmpCode: code, Days: days})
	}
	return out
}
