package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/dateutil"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLeave   Status = "Leave"
)

// NormalizeStatus maps known statuses to their canonical spelling and keeps
// anything else verbatim.
func NormalizeStatus(s string) Status {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(StatusPresent)):
		return StatusPresent
	case strings.EqualFold(s, string(StatusLeave)):
		return StatusLeave
	}
	return Status(s)
}

// RawPunch is a daily attendance row as recorded by the check-in subsystem.
type RawPunch struct {
	ID               string
	EmpCode          string
	Date             string
	AttendanceStatus string
}

type Punch struct {
	ID               string
	EmpCode          string
	Date             time.Time
	AttendanceStatus Status
}

func (p RawPunch) Normalize() (Punch, error) {
	date, err := dateutil.ParseStrict(p.Date)
	if err != nil {
		return Punch{}, fmt.Errorf("%w: punch %s of %s: %v", ErrInvalidPunchDate, p.ID, p.EmpCode, err)
	}
	return Punch{
		ID:               p.ID,
		EmpCode:          strings.TrimSpace(p.EmpCode),
		Date:             date,
		AttendanceStatus: NormalizeStatus(p.AttendanceStatus),
	}, nil
}
