package period

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/validator"
)

// Period identifies one payroll month of one company inside a tenant.
type Period struct {
	CorpID      string
	CompanyName string
	Month       int
	Year        int
}

func (p Period) String() string {
	return fmt.Sprintf("%s/%s/%04d-%02d", p.CorpID, p.CompanyName, p.Year, p.Month)
}

// Bounds returns the first and last day of the period.
func (p Period) Bounds() (time.Time, time.Time) {
	return dateutil.MonthBounds(p.Month, p.Year)
}

func (p Period) DaysInMonth() int {
	return dateutil.DaysInMonth(p.Month, p.Year)
}

func (p Period) MonthName() string {
	return dateutil.MonthName(p.Month)
}

// Month accepts either a JSON number or a string such as "March" or "03".
type Month string

func (m *Month) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Month(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("month must be a name or a number: %w", err)
	}
	*m = Month(n.String())
	return nil
}

// Request is the period selector shared by the summary, calendar and leave endpoints.
type Request struct {
	CompanyName string `json:"company_name"`
	Month       Month  `json:"month"`
	Year        int    `json:"year"`
}

// Validate checks the request and resolves it against the caller's tenant.
func (r Request) Validate(corpID string) (Period, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyName) {
		errs.Add("company_name", "is required")
	}

	month := 0
	if validator.IsEmpty(string(r.Month)) {
		errs.Add("month", "is required")
	} else if m, err := dateutil.ParseMonth(string(r.Month)); err != nil {
		errs.Add("month", "must be a month name or a number between 1 and 12")
	} else {
		month = m
	}

	if r.Year == 0 {
		errs.Add("year", "is required")
	} else if !validator.IsValidYear(r.Year) {
		errs.Add("year", "is out of range")
	}

	if err := errs.Err(); err != nil {
		return Period{}, err
	}

	return Period{
		CorpID:      corpID,
		CompanyName: strings.TrimSpace(r.CompanyName),
		Month:       month,
		Year:        r.Year,
	}, nil
}
