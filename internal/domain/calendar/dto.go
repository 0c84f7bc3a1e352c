package calendar

const dateLayout = "2006-01-02"

type NonWorkingDaysResponse struct {
	CompanyName     string   `json:"company_name"`
	Month           int      `json:"month"`
	MonthName       string   `json:"month_name"`
	Year            int      `json:"year"`
	DaysInMonth     int      `json:"days_in_month"`
	WorkingDays     int      `json:"working_days"`
	UsedFallback    bool     `json:"used_fallback"`
	Holidays        []string `json:"holidays"`
	WeekOffs        []string `json:"week_offs"`
	HalfDayWeekOffs []string `json:"half_day_week_offs"`
}

// FormatDates renders a set as sorted ISO dates.
func FormatDates(s DateSet) []string {
	out := make([]string, 0, s.Len())
	for _, d := range s.Sorted() {
		out = append(out, d.Format(dateLayout))
	}
	return out
}
