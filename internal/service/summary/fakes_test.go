package summary

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

func tenantContext(t *testing.T, corpID string) context.Context {
	t.Helper()
	svc := jwt.NewJWTService("test-secret", "1h")
	token, _, err := svc.GenerateAccessToken("user-1", corpID, user.RoleManager)
	require.NoError(t, err)
	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), decoded, nil)
}

// fakeSummaryRepo keeps rows in memory. The paired fakeTransactor restores
// its state when a transaction fails.
type fakeSummaryRepo struct {
	mu        sync.Mutex
	rows      map[string]summary.AttendanceSummary
	failOnEmp string
	locks     int
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{rows: make(map[string]summary.AttendanceSummary)}
}

func (f *fakeSummaryRepo) snapshot() map[string]summary.AttendanceSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]summary.AttendanceSummary, len(f.rows))
	for k, v := range f.rows {
		out[k] = v
	}
	return out
}

func (f *fakeSummaryRepo) restore(rows map[string]summary.AttendanceSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func samePeriod(s summary.AttendanceSummary, p period.Period) bool {
	return s.CorpID == p.CorpID && s.CompanyName == p.CompanyName && s.Month == p.Month && s.Year == p.Year
}

func (f *fakeSummaryRepo) byPeriod(p period.Period) []summary.AttendanceSummary {
	var out []summary.AttendanceSummary
	for _, s := range f.rows {
		if samePeriod(s, p) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmpCode < out[j].EmpCode })
	return out
}

func (f *fakeSummaryRepo) CountByPeriod(ctx context.Context, p period.Period) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byPeriod(p)), nil
}

func (f *fakeSummaryRepo) ListByPeriod(ctx context.Context, p period.Period) ([]summary.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPeriod(p), nil
}

func (f *fakeSummaryRepo) LockByPeriod(ctx context.Context, p period.Period) ([]summary.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks++
	return f.byPeriod(p), nil
}

func (f *fakeSummaryRepo) ListPeriods(ctx context.Context, month, year int) ([]period.Period, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[period.Period]bool)
	var out []period.Period
	for _, s := range f.rows {
		if s.Month != month || s.Year != year {
			continue
		}
		p := s.Period()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (f *fakeSummaryRepo) CreateBatch(ctx context.Context, summaries []summary.AttendanceSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range summaries {
		for _, existing := range f.rows {
			if samePeriod(existing, s.Period()) && existing.EmpCode == s.EmpCode {
				return summary.ErrSummaryAlreadyExists
			}
		}
		s.CreatedAt = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
		s.UpdatedAt = s.CreatedAt
		f.rows[s.ID] = s
	}
	return nil
}

func (f *fakeSummaryRepo) UpdateCounters(ctx context.Context, s summary.AttendanceSummary) (summary.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rows[s.ID]
	if !ok || existing.CorpID != s.CorpID {
		return summary.AttendanceSummary{}, summary.ErrSummaryNotFound
	}
	if f.failOnEmp != "" && s.EmpCode == f.failOnEmp {
		return summary.AttendanceSummary{}, io.ErrUnexpectedEOF
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = existing.UpdatedAt
	f.rows[s.ID] = s
	return s, nil
}

func (f *fakeSummaryRepo) GetByID(ctx context.Context, id, corpID string) (summary.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || s.CorpID != corpID {
		return summary.AttendanceSummary{}, summary.ErrSummaryNotFound
	}
	return s, nil
}

func (f *fakeSummaryRepo) List(ctx context.Context, corpID string, filter summary.SummaryFilter) ([]summary.AttendanceSummary, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []summary.AttendanceSummary
	for _, s := range f.rows {
		if s.CorpID != corpID {
			continue
		}
		if filter.EmpCode != nil && s.EmpCode != *filter.EmpCode {
			continue
		}
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EmpCode < all[j].EmpCode })

	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakeSummaryRepo) Delete(ctx context.Context, id, corpID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || s.CorpID != corpID {
		return summary.ErrSummaryNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeTransactor struct {
	repo *fakeSummaryRepo
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := f.repo.snapshot()
	if err := fn(ctx); err != nil {
		f.repo.restore(saved)
		return err
	}
	return nil
}

type fakeAttendanceRepo struct {
	punches []attendance.Punch
	err     error
}

func (f *fakeAttendanceRepo) ListForPeriod(ctx context.Context, p period.Period) ([]attendance.Punch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.punches, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetDirectory(ctx context.Context, corpID, companyName string, empCodes []string) (map[string]employee.Employee, error) {
	out := make(map[string]employee.Employee)
	for _, e := range f.employees {
		if e.CorpID != corpID || e.CompanyName != companyName {
			continue
		}
		for _, code := range empCodes {
			if code == e.EmpCode {
				out[code] = e
			}
		}
	}
	return out, nil
}

type fakeCalendar struct {
	nw  calendar.NonWorkingDays
	err error
}

func (f *fakeCalendar) Resolve(ctx context.Context, p period.Period) (calendar.NonWorkingDays, error) {
	return f.nw, f.err
}

type fakeLeaves struct {
	statusMap leave.StatusMap
}

func (f *fakeLeaves) Resolve(ctx context.Context, p period.Period) (leave.StatusMap, error) {
	if f.statusMap == nil {
		return leave.StatusMap{}, nil
	}
	return f.statusMap, nil
}

type archivedFile struct {
	corpID   string
	filename string
	content  []byte
}

type fakeFileService struct {
	archived []archivedFile
}

func (f *fakeFileService) ArchiveImport(ctx context.Context, corpID string, file io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}
	f.archived = append(f.archived, archivedFile{corpID: corpID, filename: filename, content: buf.Bytes()})
	return "imports/" + corpID + "/2024-04/archived.xlsx", nil
}
