package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-summary-go/internal/service/file"
	"github.com/google/uuid"
)

type SummaryServiceImpl struct {
	transactor     database.Transactor
	summaryRepo    summary.AttendanceSummaryRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	calendar       calendar.Resolver
	leaves         leave.StatusResolver
	fileService    file.FileService
	hub            *sse.Hub
}

func NewSummaryService(
	transactor database.Transactor,
	summaryRepo summary.AttendanceSummaryRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	calendarResolver calendar.Resolver,
	leaveResolver leave.StatusResolver,
	fileService file.FileService,
	hub *sse.Hub,
) summary.Service {
	return &SummaryServiceImpl{
		transactor:     transactor,
		summaryRepo:    summaryRepo,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		calendar:       calendarResolver,
		leaves:         leaveResolver,
		fileService:    fileService,
		hub:            hub,
	}
}

func (s *SummaryServiceImpl) publish(corpID, name string, data summary.ChangeEvent) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sse.Event{CorpID: corpID, Event: name, Data: data})
}

func periodEvent(p period.Period, count int) summary.ChangeEvent {
	return summary.ChangeEvent{CompanyName: p.CompanyName, Month: p.Month, Year: p.Year, Count: count}
}

func validateID(id string) error {
	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: "id", Message: "must be a valid UUID"}}
	}
	return nil
}

// ========== COMPUTATION ==========

// compute tallies the punches of p. It returns ErrNoAttendanceData when the
// period has no punches and allowEmpty is false.
func (s *SummaryServiceImpl) compute(ctx context.Context, p period.Period, allowEmpty bool) ([]summary.Tally, calendar.NonWorkingDays, error) {
	punches, err := s.attendanceRepo.ListForPeriod(ctx, p)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidPunchDate) {
			return nil, calendar.NonWorkingDays{}, &summary.ComputationError{Op: "read attendance", Err: err}
		}
		return nil, calendar.NonWorkingDays{}, err
	}
	if len(punches) == 0 && !allowEmpty {
		return nil, calendar.NonWorkingDays{}, summary.ErrNoAttendanceData
	}

	nw, err := s.calendar.Resolve(ctx, p)
	if err != nil {
		return nil, calendar.NonWorkingDays{}, err
	}

	leaves, err := s.leaves.Resolve(ctx, p)
	if err != nil {
		return nil, calendar.NonWorkingDays{}, err
	}

	return Aggregate(punches, nw, leaves), nw, nil
}

// ========== BUILD ==========

func (s *SummaryServiceImpl) BuildSummaries(ctx context.Context, req period.Request) (summary.BuildResult, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.BuildResult{}, err
	}

	p, err := req.Validate(claims.CorpID)
	if err != nil {
		return summary.BuildResult{}, err
	}

	var result summary.BuildResult
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := s.summaryRepo.CountByPeriod(ctx, p)
		if err != nil {
			return err
		}
		if count > 0 {
			return summary.ErrSummaryAlreadyExists
		}

		tallies, nw, err := s.compute(ctx, p, false)
		if err != nil {
			return err
		}
		if len(tallies) == 0 {
			return summary.ErrNoAttendanceData
		}

		rows := make([]summary.AttendanceSummary, 0, len(tallies))
		for _, t := range tallies {
			row := summary.NewAttendanceSummary(p, t, nw)
			id, err := uuid.NewV7()
			if err != nil {
				return &summary.ComputationError{Op: "generate summary id", Err: err}
			}
			row.ID = id.String()
			rows = append(rows, row)
		}

		if err := s.summaryRepo.CreateBatch(ctx, rows); err != nil {
			return err
		}

		result = summary.BuildResult{
			CompanyName:  p.CompanyName,
			Month:        p.Month,
			MonthName:    p.MonthName(),
			Year:         p.Year,
			Created:      len(rows),
			WorkingDays:  nw.WorkingDays(),
			Holidays:     nw.HolidayCount(),
			WeekOffs:     nw.WeekOffCount(),
			UsedFallback: nw.UsedFallback,
		}
		return nil
	})
	if err != nil {
		return summary.BuildResult{}, err
	}

	slog.Info("Attendance summaries built",
		"period", p.String(),
		"user_id", claims.UserID,
		"created", result.Created,
		"working_days", result.WorkingDays,
		"used_fallback", result.UsedFallback,
	)
	s.publish(p.CorpID, summary.EventBuilt, periodEvent(p, result.Created))

	return result, nil
}

// ========== RECALCULATE ==========

func (s *SummaryServiceImpl) Recalculate(ctx context.Context, req period.Request) (summary.RecalculateResult, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.RecalculateResult{}, err
	}

	p, err := req.Validate(claims.CorpID)
	if err != nil {
		return summary.RecalculateResult{}, err
	}

	return s.RecalculatePeriod(ctx, p)
}

// RecalculatePeriod rewrites every summary of p from current data. Rows whose
// employee has no punches any more are reset. Employees with punches but no
// row are reported, not inserted.
func (s *SummaryServiceImpl) RecalculatePeriod(ctx context.Context, p period.Period) (summary.RecalculateResult, error) {
	var result summary.RecalculateResult
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.summaryRepo.LockByPeriod(ctx, p)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return summary.ErrNoSummariesToRecalculate
		}

		tallies, nw, err := s.compute(ctx, p, true)
		if err != nil {
			return err
		}

		byCode := make(map[string]summary.Tally, len(tallies))
		for _, t := range tallies {
			byCode[t.EmpCode] = t
		}

		reset := 0
		for _, row := range existing {
			t, ok := byCode[row.EmpCode]
			if !ok {
				t = summary.Tally{EmpCode: row.EmpCode}
				reset++
			}
			delete(byCode, row.EmpCode)

			row.Apply(t, nw)
			if _, err := s.summaryRepo.UpdateCounters(ctx, row); err != nil {
				return err
			}
		}

		unmatched := make([]string, 0, len(byCode))
		for code := range byCode {
			unmatched = append(unmatched, code)
		}
		sort.Strings(unmatched)

		result = summary.RecalculateResult{
			CompanyName:       p.CompanyName,
			Month:             p.Month,
			MonthName:         p.MonthName(),
			Year:              p.Year,
			Updated:           len(existing),
			Reset:             reset,
			UnmatchedEmpCodes: unmatched,
			WorkingDays:       nw.WorkingDays(),
			UsedFallback:      nw.UsedFallback,
		}
		return nil
	})
	if err != nil {
		return summary.RecalculateResult{}, err
	}

	if len(result.UnmatchedEmpCodes) > 0 {
		slog.Warn("Employees with attendance but no summary row",
			"period", p.String(),
			"emp_codes", result.UnmatchedEmpCodes,
		)
	}
	slog.Info("Attendance summaries recalculated",
		"period", p.String(),
		"updated", result.Updated,
		"reset", result.Reset,
	)
	s.publish(p.CorpID, summary.EventRecalculated, periodEvent(p, result.Updated))

	return result, nil
}

// ========== QUERIES ==========

// directoryFor resolves employee details for rows that may span companies.
func (s *SummaryServiceImpl) directoryFor(ctx context.Context, corpID string, rows []summary.AttendanceSummary) (map[string]map[string]employee.Employee, error) {
	codesByCompany := make(map[string][]string)
	for _, row := range rows {
		codesByCompany[row.CompanyName] = append(codesByCompany[row.CompanyName], row.EmpCode)
	}

	out := make(map[string]map[string]employee.Employee, len(codesByCompany))
	for company, codes := range codesByCompany {
		dir, err := s.employeeRepo.GetDirectory(ctx, corpID, company, codes)
		if err != nil {
			return nil, err
		}
		out[company] = dir
	}
	return out, nil
}

func lookupEmployee(directory map[string]map[string]employee.Employee, row summary.AttendanceSummary) *employee.Employee {
	emp, ok := directory[row.CompanyName][row.EmpCode]
	if !ok {
		return nil
	}
	return &emp
}

func (s *SummaryServiceImpl) ListSummaries(ctx context.Context, filter summary.SummaryFilter) (summary.ListSummaryResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.ListSummaryResponse{}, err
	}

	if err := filter.Validate(); err != nil {
		return summary.ListSummaryResponse{}, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	rows, total, err := s.summaryRepo.List(ctx, claims.CorpID, filter)
	if err != nil {
		return summary.ListSummaryResponse{}, err
	}

	directory, err := s.directoryFor(ctx, claims.CorpID, rows)
	if err != nil {
		return summary.ListSummaryResponse{}, err
	}

	data := make([]summary.SummaryResponse, 0, len(rows))
	for _, row := range rows {
		data = append(data, summary.ToResponse(row, lookupEmployee(directory, row)))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return summary.ListSummaryResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *SummaryServiceImpl) GetSummary(ctx context.Context, id string) (summary.SummaryResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.SummaryResponse{}, err
	}
	if err := validateID(id); err != nil {
		return summary.SummaryResponse{}, err
	}

	row, err := s.summaryRepo.GetByID(ctx, id, claims.CorpID)
	if err != nil {
		return summary.SummaryResponse{}, err
	}

	return s.respond(ctx, row)
}

func (s *SummaryServiceImpl) respond(ctx context.Context, row summary.AttendanceSummary) (summary.SummaryResponse, error) {
	directory, err := s.directoryFor(ctx, row.CorpID, []summary.AttendanceSummary{row})
	if err != nil {
		return summary.SummaryResponse{}, err
	}
	return summary.ToResponse(row, lookupEmployee(directory, row)), nil
}

func (s *SummaryServiceImpl) Exists(ctx context.Context, req period.Request) (summary.ExistsResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.ExistsResponse{}, err
	}

	p, err := req.Validate(claims.CorpID)
	if err != nil {
		return summary.ExistsResponse{}, err
	}

	count, err := s.summaryRepo.CountByPeriod(ctx, p)
	if err != nil {
		return summary.ExistsResponse{}, err
	}

	return summary.ExistsResponse{Exists: count > 0, Count: count}, nil
}

// ========== MUTATIONS ==========

func (s *SummaryServiceImpl) UpdateSummary(ctx context.Context, req summary.UpdateSummaryRequest) (summary.SummaryResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.SummaryResponse{}, err
	}
	if err := validateID(req.ID); err != nil {
		return summary.SummaryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return summary.SummaryResponse{}, err
	}

	var updated summary.AttendanceSummary
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		updated, txErr = s.applyUpdate(ctx, claims.CorpID, "", req)
		return txErr
	})
	if err != nil {
		return summary.SummaryResponse{}, err
	}

	slog.Info("Attendance summary updated", "id", updated.ID, "emp_code", updated.EmpCode, "user_id", claims.UserID)
	s.publish(claims.CorpID, summary.EventUpdated, summary.ChangeEvent{
		CompanyName: updated.CompanyName,
		Month:       updated.Month,
		Year:        updated.Year,
		ID:          updated.ID,
		EmpCode:     updated.EmpCode,
		Count:       1,
	})

	return s.respond(ctx, updated)
}

// applyUpdate merges req into the stored row and persists it. A non-empty
// empCode must match the stored row.
func (s *SummaryServiceImpl) applyUpdate(ctx context.Context, corpID, empCode string, req summary.UpdateSummaryRequest) (summary.AttendanceSummary, error) {
	row, err := s.summaryRepo.GetByID(ctx, req.ID, corpID)
	if err != nil {
		return summary.AttendanceSummary{}, err
	}
	if empCode != "" && !strings.EqualFold(row.EmpCode, empCode) {
		return summary.AttendanceSummary{}, validator.ValidationErrors{{
			Field:   "emp_code",
			Message: fmt.Sprintf("does not match summary %s (expected %s)", row.ID, row.EmpCode),
		}}
	}

	req.ApplyTo(&row)
	if err := summary.CheckConsistency(row); err != nil {
		return summary.AttendanceSummary{}, err
	}

	return s.summaryRepo.UpdateCounters(ctx, row)
}

func (s *SummaryServiceImpl) DeleteSummary(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.summaryRepo.Delete(ctx, id, claims.CorpID); err != nil {
		return err
	}

	slog.Info("Attendance summary deleted", "id", id, "user_id", claims.UserID)
	s.publish(claims.CorpID, summary.EventDeleted, summary.ChangeEvent{ID: id, Count: 1})
	return nil
}

// ========== EXPORT / IMPORT ==========

// exportRows loads the rows and employee directory of one period for export.
func (s *SummaryServiceImpl) exportRows(ctx context.Context, req period.Request) (period.Period, []summary.AttendanceSummary, map[string]employee.Employee, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return period.Period{}, nil, nil, err
	}

	p, err := req.Validate(claims.CorpID)
	if err != nil {
		return period.Period{}, nil, nil, err
	}

	rows, err := s.summaryRepo.ListByPeriod(ctx, p)
	if err != nil {
		return period.Period{}, nil, nil, err
	}
	if len(rows) == 0 {
		return period.Period{}, nil, nil, summary.ErrSummaryNotFound
	}

	directory, err := s.directoryFor(ctx, p.CorpID, rows)
	if err != nil {
		return period.Period{}, nil, nil, err
	}

	return p, rows, directory[p.CompanyName], nil
}

func (s *SummaryServiceImpl) Export(ctx context.Context, req period.Request) (summary.ExportFile, error) {
	p, rows, directory, err := s.exportRows(ctx, req)
	if err != nil {
		return summary.ExportFile{}, err
	}

	content, err := renderWorkbook(p, rows, directory)
	if err != nil {
		return summary.ExportFile{}, err
	}

	return summary.ExportFile{
		Filename:    exportFilename(p, "xlsx"),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func (s *SummaryServiceImpl) ExportPDF(ctx context.Context, req period.Request) (summary.ExportFile, error) {
	p, rows, directory, err := s.exportRows(ctx, req)
	if err != nil {
		return summary.ExportFile{}, err
	}

	content, err := renderReport(p, rows, directory, time.Now())
	if err != nil {
		return summary.ExportFile{}, err
	}

	return summary.ExportFile{
		Filename:    exportFilename(p, "pdf"),
		ContentType: pdfContentType,
		Content:     content,
	}, nil
}

func (s *SummaryServiceImpl) Import(ctx context.Context, r io.Reader, filename string) (summary.ImportResult, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return summary.ImportResult{}, err
	}

	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return summary.ImportResult{}, fmt.Errorf("%w: only .xlsx files are accepted", summary.ErrInvalidWorkbook)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return summary.ImportResult{}, fmt.Errorf("failed to read import file: %w", err)
	}

	rows, err := parseWorkbook(bytes.NewReader(content))
	if err != nil {
		return summary.ImportResult{}, err
	}

	archivePath, err := s.fileService.ArchiveImport(ctx, claims.CorpID, bytes.NewReader(content), filename)
	if err != nil {
		return summary.ImportResult{}, err
	}

	result := summary.ImportResult{
		TotalRows:   len(rows),
		Errors:      []summary.ImportRowError{},
		ArchivePath: archivePath,
	}

	for _, row := range rows {
		if err := s.importRow(ctx, claims.CorpID, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, summary.ImportRowError{
				Row:     row.Line,
				ID:      row.ID,
				EmpCode: row.EmpCode,
				Message: err.Error(),
			})
			continue
		}
		result.Updated++
	}

	slog.Info("Attendance summary workbook imported",
		"corp_id", claims.CorpID,
		"user_id", claims.UserID,
		"archive_path", archivePath,
		"total_rows", result.TotalRows,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	if result.Updated > 0 {
		s.publish(claims.CorpID, summary.EventImported, summary.ChangeEvent{Count: result.Updated})
	}

	return result, nil
}

func (s *SummaryServiceImpl) importRow(ctx context.Context, corpID string, row workbookRow) error {
	if row.Err != nil {
		return row.Err
	}
	if validator.IsEmpty(row.EmpCode) {
		return validator.ValidationErrors{{Field: "emp_code", Message: "is required"}}
	}
	if err := validateID(row.ID); err != nil {
		return err
	}
	if err := row.Update.Validate(); err != nil {
		return err
	}

	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := s.applyUpdate(ctx, corpID, row.EmpCode, row.Update)
		return err
	})
}

// ========== EVENTS ==========

func (s *SummaryServiceImpl) Subscribe(ctx context.Context) (<-chan sse.Event, func(), error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	if s.hub == nil {
		return nil, nil, errors.New("summary event stream is not configured")
	}

	events, cleanup := s.hub.Subscribe(claims.CorpID)
	return events, cleanup, nil
}
