package summary

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	ctx        context.Context
	repo       *fakeSummaryRepo
	attendance *fakeAttendanceRepo
	calendar   *fakeCalendar
	leaves     *fakeLeaves
	files      *fakeFileService
	hub        *sse.Hub
	svc        summary.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:  tenantContext(t, "T1"),
		repo: newFakeSummaryRepo(),
		attendance: &fakeAttendanceRepo{punches: []attendance.Punch{
			punch("E1", 4, "Present"),
			punch("E1", 5, "Present"),
			punch("E1", 6, "Absent"),
			punch("E2", 4, "Present"),
			punch("E2", 5, "Absent"),
		}},
		calendar: &fakeCalendar{nw: march2024()},
		leaves:   &fakeLeaves{},
		files:    &fakeFileService{},
	}
	employees := &fakeEmployeeRepo{employees: []employee.Employee{
		{CorpID: "T1", CompanyName: "Acme", EmpCode: "E1", Name: "Ayu Lestari", Designation: "Engineer", Department: "R&D"},
		{CorpID: "T1", CompanyName: "Acme", EmpCode: "E2", Name: "Budi Santoso", Designation: "Analyst", Department: "Finance"},
	}}
	f.hub = sse.NewHub()
	f.svc = NewSummaryService(&fakeTransactor{repo: f.repo}, f.repo, f.attendance, employees, f.calendar, f.leaves, f.files, f.hub)
	return f
}

func marchRequest() period.Request {
	return period.Request{CompanyName: "Acme", Month: "March", Year: 2024}
}

var marchPeriod = period.Period{CorpID: "T1", CompanyName: "Acme", Month: 3, Year: 2024}

func (f *fixture) rowFor(t *testing.T, empCode string) summary.AttendanceSummary {
	t.Helper()
	for _, s := range f.repo.byPeriod(marchPeriod) {
		if s.EmpCode == empCode {
			return s
		}
	}
	t.Fatalf("no summary for %s", empCode)
	return summary.AttendanceSummary{}
}

func TestBuildSummaries_CreatesOneRowPerEmployee(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 20, result.WorkingDays)
	assert.Equal(t, 1, result.Holidays)
	assert.Equal(t, 10, result.WeekOffs)
	assert.True(t, result.UsedFallback)
	assert.Equal(t, "March", result.MonthName)

	e1 := f.rowFor(t, "E1")
	assert.True(t, validator.IsValidUUID(e1.ID))
	assert.Equal(t, 2, e1.TotalPresent)
	assert.Equal(t, 1, e1.AbsentWithoutLeave)
	assert.Equal(t, 19, e1.PaidDays)
	assert.Equal(t, 31, e1.WorkingDays+e1.Holidays+e1.WeekOff)
}

func TestBuildSummaries_SecondCallConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)
	before := f.repo.snapshot()

	f.attendance.punches = append(f.attendance.punches, punch("E3", 4, "Present"))
	_, err = f.svc.BuildSummaries(f.ctx, marchRequest())
	assert.ErrorIs(t, err, summary.ErrSummaryAlreadyExists)
	assert.Equal(t, before, f.repo.snapshot())
}

func TestBuildSummaries_NoAttendanceData(t *testing.T) {
	f := newFixture(t)
	f.attendance.punches = nil

	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	assert.ErrorIs(t, err, summary.ErrNoAttendanceData)
	assert.Empty(t, f.repo.snapshot())
}

func TestBuildSummaries_InvalidPunchDateIsComputationError(t *testing.T) {
	f := newFixture(t)
	f.attendance.err = fmt.Errorf("%w: punch p1 of E1", attendance.ErrInvalidPunchDate)

	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	var compErr *summary.ComputationError
	require.ErrorAs(t, err, &compErr)
	assert.ErrorIs(t, err, attendance.ErrInvalidPunchDate)
	assert.Empty(t, f.repo.snapshot())
}

func TestBuildSummaries_MissingShiftPolicy(t *testing.T) {
	f := newFixture(t)
	f.calendar.err = calendar.ErrShiftPolicyNotFound

	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	assert.ErrorIs(t, err, calendar.ErrShiftPolicyNotFound)
	assert.Empty(t, f.repo.snapshot())
}

func TestBuildSummaries_ValidatesRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BuildSummaries(f.ctx, period.Request{Month: "13"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "company_name")
}

func TestBuildSummaries_RequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BuildSummaries(context.Background(), marchRequest())
	assert.Error(t, err)
}

func TestRecalculate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	f.leaves.statusMap = make(leave.StatusMap)
	f.leaves.statusMap.Set("E1", day(6), leave.StatusApproved)

	first, err := f.svc.Recalculate(f.ctx, marchRequest())
	require.NoError(t, err)
	afterFirst := f.repo.snapshot()

	second, err := f.svc.Recalculate(f.ctx, marchRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst, f.repo.snapshot())

	e1 := f.rowFor(t, "E1")
	assert.Equal(t, 1, e1.Leave)
	assert.Zero(t, e1.AbsentWithoutLeave)
	assert.Equal(t, 20, e1.PaidDays)
}

func TestRecalculate_ResetsAndReportsUnmatched(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	f.attendance.punches = []attendance.Punch{
		punch("E1", 4, "Present"),
		punch("E9", 4, "Present"),
	}

	result, err := f.svc.Recalculate(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Reset)
	assert.Equal(t, []string{"E9"}, result.UnmatchedEmpCodes)

	e2 := f.rowFor(t, "E2")
	assert.Zero(t, e2.TotalPresent)
	assert.Zero(t, e2.Absent)
	assert.Equal(t, e2.WorkingDays, e2.PaidDays)
	assert.Len(t, f.repo.byPeriod(marchPeriod), 2)
}

func TestRecalculate_NothingToRecalculate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recalculate(f.ctx, marchRequest())
	assert.ErrorIs(t, err, summary.ErrNoSummariesToRecalculate)
}

func TestRecalculate_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)
	before := f.repo.snapshot()

	f.attendance.punches = []attendance.Punch{punch("E1", 11, "Present"), punch("E2", 11, "Present")}
	f.repo.failOnEmp = "E2"

	_, err = f.svc.Recalculate(f.ctx, marchRequest())
	assert.Error(t, err)
	assert.Equal(t, before, f.repo.snapshot())
}

func TestUpdateSummary(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)
	e1 := f.rowFor(t, "E1")

	t.Run("applies counters and re-derives absent", func(t *testing.T) {
		withLeave, paid := 2, 18
		resp, err := f.svc.UpdateSummary(f.ctx, summary.UpdateSummaryRequest{
			ID:              e1.ID,
			AbsentWithLeave: &withLeave,
			PaidDays:        &paid,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Absent)
		assert.Equal(t, 18, resp.PaidDays)
		assert.Equal(t, "Ayu Lestari", resp.EmpName)
		assert.Equal(t, "R&D", resp.Department)
	})

	t.Run("rejects paid days above working days", func(t *testing.T) {
		paid := 25
		_, err := f.svc.UpdateSummary(f.ctx, summary.UpdateSummaryRequest{ID: e1.ID, PaidDays: &paid})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "paid_days")
		assert.Equal(t, 18, f.rowFor(t, "E1").PaidDays)
	})

	t.Run("rejects negative counters", func(t *testing.T) {
		n := -1
		_, err := f.svc.UpdateSummary(f.ctx, summary.UpdateSummaryRequest{ID: e1.ID, Leave: &n})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		n := 1
		_, err := f.svc.UpdateSummary(f.ctx, summary.UpdateSummaryRequest{ID: "42", Leave: &n})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "id")
	})

	t.Run("other tenant cannot see the row", func(t *testing.T) {
		n := 1
		_, err := f.svc.UpdateSummary(tenantContext(t, "T2"), summary.UpdateSummaryRequest{ID: e1.ID, Leave: &n})
		assert.ErrorIs(t, err, summary.ErrSummaryNotFound)
	})
}

func TestListGetDeleteExists(t *testing.T) {
	f := newFixture(t)

	exists, err := f.svc.Exists(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.False(t, exists.Exists)

	_, err = f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	exists, err = f.svc.Exists(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.Equal(t, summary.ExistsResponse{Exists: true, Count: 2}, exists)

	list, err := f.svc.ListSummaries(f.ctx, summary.SummaryFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, 1, list.Page)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "E1", list.Data[0].EmpCode)
	assert.Equal(t, "Engineer", list.Data[0].Designation)

	_, err = f.svc.ListSummaries(f.ctx, summary.SummaryFilter{SortBy: "salary"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	e2 := f.rowFor(t, "E2")
	got, err := f.svc.GetSummary(f.ctx, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.EmpName)
	assert.Equal(t, "0.95", got.PayableRatio.String())

	require.NoError(t, f.svc.DeleteSummary(f.ctx, e2.ID))
	_, err = f.svc.GetSummary(f.ctx, e2.ID)
	assert.ErrorIs(t, err, summary.ErrSummaryNotFound)
	assert.ErrorIs(t, f.svc.DeleteSummary(f.ctx, e2.ID), summary.ErrSummaryNotFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	export, err := f.svc.Export(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.Equal(t, "attendance-summary_Acme_2024-03.xlsx", export.Filename)
	assert.Equal(t, xlsxContentType, export.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	assert.Equal(t, []string{"March 2024"}, wb.GetSheetList())

	panes, err := wb.GetPanes("March 2024")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	idWidth, err := wb.GetColWidth("March 2024", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(38), idWidth)

	rows, err := wb.GetRows("March 2024")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, workbookHeader, rows[0])
	assert.Equal(t, "E1", rows[1][1])
	assert.Equal(t, "Ayu Lestari", rows[1][2])

	// E1: one unexplained absence becomes a paid absence.
	require.NoError(t, wb.SetCellValue("March 2024", "O2", 1))
	require.NoError(t, wb.SetCellValue("March 2024", "P2", 0))
	require.NoError(t, wb.SetCellValue("March 2024", "M2", 20))
	// E2: wrong employee code for the id.
	require.NoError(t, wb.SetCellValue("March 2024", "B3", "E7"))
	// A row with a non-numeric counter.
	require.NoError(t, wb.SetSheetRow("March 2024", "A4", &[]interface{}{rows[1][0], "E1", "", "", "", "March", 2024, "many"}))

	edited, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	result, err := f.svc.Import(f.ctx, bytes.NewReader(edited.Bytes()), "march.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "E7", result.Errors[0].EmpCode)
	assert.Contains(t, result.Errors[0].Message, "emp_code")
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Message, "Total Present")

	assert.Equal(t, "imports/T1/2024-04/archived.xlsx", result.ArchivePath)
	require.Len(t, f.files.archived, 1)
	assert.Equal(t, edited.Bytes(), f.files.archived[0].content)

	e1 := f.rowFor(t, "E1")
	assert.Equal(t, 1, e1.AbsentWithLeave)
	assert.Zero(t, e1.AbsentWithoutLeave)
	assert.Equal(t, 1, e1.Absent)
	assert.Equal(t, 20, e1.PaidDays)
}

func TestImport_RejectsNonWorkbook(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Import(f.ctx, bytes.NewReader([]byte("id,emp_code\n")), "summary.csv")
	assert.ErrorIs(t, err, summary.ErrInvalidWorkbook)

	_, err = f.svc.Import(f.ctx, bytes.NewReader([]byte("not a zip")), "summary.xlsx")
	assert.ErrorIs(t, err, summary.ErrInvalidWorkbook)
	assert.Empty(t, f.files.archived)
}

func TestImport_MissingColumns(t *testing.T) {
	f := newFixture(t)

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"ID", "Emp Code", "Paid Days"}))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	_, err = f.svc.Import(f.ctx, buf, "summary.xlsx")
	require.ErrorIs(t, err, summary.ErrInvalidWorkbook)
	assert.Contains(t, err.Error(), "Total Present")
}

func TestSubscribe_ReceivesTenantChanges(t *testing.T) {
	f := newFixture(t)

	events, cleanup, err := f.svc.Subscribe(f.ctx)
	require.NoError(t, err)
	defer cleanup()

	other, cleanupOther, err := f.svc.Subscribe(tenantContext(t, "T2"))
	require.NoError(t, err)
	defer cleanupOther()

	_, err = f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	_, err = f.svc.BuildSummaries(f.ctx, marchRequest())
	require.ErrorIs(t, err, summary.ErrSummaryAlreadyExists)

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, summary.EventBuilt, ev.Event)
	assert.Equal(t, summary.ChangeEvent{CompanyName: "Acme", Month: 3, Year: 2024, Count: 2}, ev.Data)
	assert.Empty(t, other)

	_, _, err = f.svc.Subscribe(context.Background())
	assert.Error(t, err)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ExportPDF(f.ctx, marchRequest())
	assert.ErrorIs(t, err, summary.ErrSummaryNotFound)

	_, err = f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	report, err := f.svc.ExportPDF(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.Equal(t, "attendance-summary_Acme_2024-03.pdf", report.Filename)
	assert.Equal(t, pdfContentType, report.ContentType)
	assert.True(t, bytes.HasPrefix(report.Content, []byte("%PDF-")))
}

func TestRowLocking(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildSummaries(f.ctx, marchRequest())
	require.NoError(t, err)

	_, err = f.svc.Export(f.ctx, marchRequest())
	require.NoError(t, err)
	_, err = f.svc.ExportPDF(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.Zero(t, f.repo.locks, "exports read without locking")

	_, err = f.svc.Recalculate(f.ctx, marchRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.locks)
}
