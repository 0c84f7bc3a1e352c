package summary

import (
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== QUERY DTOs ==========

type SummaryFilter struct {
	CompanyName *string
	EmpCode     *string
	Month       *int
	Year        *int
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

var allowedSortColumns = []string{"emp_code", "period", "paid_days", "created_at"}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs.Add("month", "must be between 1 and 12")
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs.Add("year", "is out of range")
	}
	if f.Limit > 100 {
		errs.Add("limit", "must not exceed 100")
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, allowedSortColumns) {
		errs.Add("sort_by", "must be one of emp_code, period, paid_days, created_at")
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs.Add("sort_order", "must be 'asc' or 'desc'")
	}

	return errs.Err()
}

// ========== UPDATE DTOs ==========

type UpdateSummaryRequest struct {
	ID                 string `json:"-"`
	TotalPresent       *int   `json:"total_present,omitempty"`
	WorkingDays        *int   `json:"working_days,omitempty"`
	Holidays           *int   `json:"holidays,omitempty"`
	WeekOff            *int   `json:"week_off,omitempty"`
	Leave              *int   `json:"leave,omitempty"`
	PaidDays           *int   `json:"paid_days,omitempty"`
	AbsentWithLeave    *int   `json:"absent_with_leave,omitempty"`
	AbsentWithoutLeave *int   `json:"absent_without_leave,omitempty"`
}

func (r *UpdateSummaryRequest) fields() map[string]*int {
	return map[string]*int{
		"total_present":        r.TotalPresent,
		"working_days":         r.WorkingDays,
		"holidays":             r.Holidays,
		"week_off":             r.WeekOff,
		"leave":                r.Leave,
		"paid_days":            r.PaidDays,
		"absent_with_leave":    r.AbsentWithLeave,
		"absent_without_leave": r.AbsentWithoutLeave,
	}
}

func (r *UpdateSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "is required")
	}

	provided := 0
	for field, value := range r.fields() {
		if value == nil {
			continue
		}
		provided++
		if *value < 0 {
			errs.Add(field, "must be non-negative")
		}
	}
	if provided == 0 {
		errs.Add("body", "at least one counter must be provided")
	}

	return errs.Err()
}

// ApplyTo merges the provided counters into s and re-derives Absent.
func (r *UpdateSummaryRequest) ApplyTo(s *AttendanceSummary) {
	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.TotalPresent, r.TotalPresent)
	set(&s.WorkingDays, r.WorkingDays)
	set(&s.Holidays, r.Holidays)
	set(&s.WeekOff, r.WeekOff)
	set(&s.Leave, r.Leave)
	set(&s.PaidDays, r.PaidDays)
	set(&s.AbsentWithLeave, r.AbsentWithLeave)
	set(&s.AbsentWithoutLeave, r.AbsentWithoutLeave)
	s.Absent = s.AbsentWithLeave + s.AbsentWithoutLeave
}

// CheckConsistency validates a merged summary against its month.
func CheckConsistency(s AttendanceSummary) error {
	var errs validator.ValidationErrors
	days := dateutil.DaysInMonth(s.Month, s.Year)

	counters := map[string]int{
		"total_present":        s.TotalPresent,
		"working_days":         s.WorkingDays,
		"holidays":             s.Holidays,
		"week_off":             s.WeekOff,
		"leave":                s.Leave,
		"paid_days":            s.PaidDays,
		"absent_with_leave":    s.AbsentWithLeave,
		"absent_without_leave": s.AbsentWithoutLeave,
	}
	for field, value := range counters {
		if value < 0 {
			errs.Add(field, "must be non-negative")
		} else if value > days {
			errs.Add(field, "must not exceed the days of the month")
		}
	}
	if s.PaidDays > s.WorkingDays {
		errs.Add("paid_days", "must not exceed working_days")
	}
	if s.WorkingDays+s.Holidays+s.WeekOff > days {
		errs.Add("working_days", "working_days, holidays and week_off exceed the days of the month")
	}

	return errs.Err()
}

// ========== RESPONSE DTOs ==========

type SummaryResponse struct {
	ID                 string          `json:"id"`
	CorpID             string          `json:"corp_id"`
	CompanyName        string          `json:"company_name"`
	EmpCode            string          `json:"emp_code"`
	EmpName            string          `json:"emp_name,omitempty"`
	Designation        string          `json:"designation,omitempty"`
	Department         string          `json:"department,omitempty"`
	Month              int             `json:"month"`
	MonthName          string          `json:"month_name"`
	Year               int             `json:"year"`
	TotalPresent       int             `json:"total_present"`
	WorkingDays        int             `json:"working_days"`
	Holidays           int             `json:"holidays"`
	WeekOff            int             `json:"week_off"`
	Leave              int             `json:"leave"`
	PaidDays           int             `json:"paid_days"`
	Absent             int             `json:"absent"`
	AbsentWithLeave    int             `json:"absent_with_leave"`
	AbsentWithoutLeave int             `json:"absent_without_leave"`
	PayableRatio       decimal.Decimal `json:"payable_ratio"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func ToResponse(s AttendanceSummary, emp *employee.Employee) SummaryResponse {
	resp := SummaryResponse{
		ID:                 s.ID,
		CorpID:             s.CorpID,
		CompanyName:        s.CompanyName,
		EmpCode:            s.EmpCode,
		Month:              s.Month,
		MonthName:          dateutil.MonthName(s.Month),
		Year:               s.Year,
		TotalPresent:       s.TotalPresent,
		WorkingDays:        s.WorkingDays,
		Holidays:           s.Holidays,
		WeekOff:            s.WeekOff,
		Leave:              s.Leave,
		PaidDays:           s.PaidDays,
		Absent:             s.Absent,
		AbsentWithLeave:    s.AbsentWithLeave,
		AbsentWithoutLeave: s.AbsentWithoutLeave,
		PayableRatio:       s.PayableRatio(),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if emp != nil {
		resp.EmpName = emp.Name
		resp.Designation = emp.Designation
		resp.Department = emp.Department
	}
	return resp
}

type ListSummaryResponse struct {
	Data       []SummaryResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type BuildResult struct {
	CompanyName  string `json:"company_name"`
	Month        int    `json:"month"`
	MonthName    string `json:"month_name"`
	Year         int    `json:"year"`
	Created      int    `json:"created"`
	WorkingDays  int    `json:"working_days"`
	Holidays     int    `json:"holidays"`
	WeekOffs     int    `json:"week_offs"`
	UsedFallback bool   `json:"used_fallback"`
}

type RecalculateResult struct {
	CompanyName       string   `json:"company_name"`
	Month             int      `json:"month"`
	MonthName         string   `json:"month_name"`
	Year              int      `json:"year"`
	Updated           int      `json:"updated"`
	Reset             int      `json:"reset"`
	UnmatchedEmpCodes []string `json:"unmatched_emp_codes"`
	WorkingDays       int      `json:"working_days"`
	UsedFallback      bool     `json:"used_fallback"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
	Count  int  `json:"count"`
}

// ExportFile is a rendered workbook ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ImportRowError struct {
	Row     int    `json:"row"`
	ID      string `json:"id,omitempty"`
	EmpCode string `json:"emp_code,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows   int              `json:"total_rows"`
	Updated     int              `json:"updated"`
	Failed      int              `json:"failed"`
	Errors      []ImportRowError `json:"errors"`
	ArchivePath string           `json:"archive_path,omitempty"`
}

// Change events pushed to the tenant's event stream.
const (
	EventBuilt        = "summary.built"
	EventRecalculated = "summary.recalculated"
	EventUpdated      = "summary.updated"
	EventDeleted      = "summary.deleted"
	EventImported     = "summary.imported"
)

type ChangeEvent struct {
	CompanyName string `json:"company_name,omitempty"`
	Month       int    `json:"month,omitempty"`
	Year        int    `json:"year,omitempty"`
	ID          string `json:"id,omitempty"`
	EmpCode     string `json:"emp_code,omitempty"`
	Count       int    `json:"count"`
}
