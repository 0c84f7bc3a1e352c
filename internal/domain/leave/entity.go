package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusReturned Status = "Returned"
)

var statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusReturned}

// ParseStatus matches s against the known statuses, ignoring case.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, status := range statuses {
		if strings.EqualFold(string(status), s) {
			return status, true
		}
	}
	return "", false
}

// RawLeaveRequest is a leave application as stored, with free-text dates.
type RawLeaveRequest struct {
	ID          string
	CorpID      string
	CompanyName string
	EmpCode     string
	FromDate    string
	ToDate      string
	Status      string
}

// LeaveRequest is a leave application with parsed dates.
type LeaveRequest struct {
	ID      string
	EmpCode string
	From    time.Time
	To      time.Time
	Status  Status
}

// Normalize parses the stored dates and status.
func (r RawLeaveRequest) Normalize() (LeaveRequest, error) {
	from, err := dateutil.ParseFlexible(r.FromDate)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("from_date: %w", err)
	}
	to, err := dateutil.ParseFlexible(r.ToDate)
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("to_date: %w", err)
	}
	status, ok := ParseStatus(r.Status)
	if !ok {
		return LeaveRequest{}, fmt.Errorf("%w: %q", ErrUnknownStatus, r.Status)
	}

	return LeaveRequest{
		ID:      r.ID,
		EmpCode: strings.TrimSpace(r.EmpCode),
		From:    from,
		To:      to,
		Status:  status,
	}, nil
}

func (r LeaveRequest) IsInverted() bool {
	return r.From.After(r.To)
}

// Overlaps reports whether the request touches [start, end].
func (r LeaveRequest) Overlaps(start, end time.Time) bool {
	return !r.To.Before(start) && !r.From.After(end)
}

// StatusMap holds the leave status of each employee per day.
type StatusMap map[string]map[time.Time]Status

func (m StatusMap) Set(empCode string, date time.Time, status Status) {
	days, ok := m[empCode]
	if !ok {
		days = make(map[time.Time]Status)
		m[empCode] = days
	}
	days[dateutil.DateOnly(date)] = status
}

func (m StatusMap) Lookup(empCode string, date time.Time) (Status, bool) {
	status, ok := m[empCode][dateutil.DateOnly(date)]
	return status, ok
}
