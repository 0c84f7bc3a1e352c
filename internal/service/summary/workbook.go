package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	colID                 = "ID"
	colEmpCode            = "Emp Code"
	colEmpName            = "Emp Name"
	colDesignation        = "Designation"
	colDepartment         = "Department"
	colMonth              = "Month"
	colYear               = "Year"
	colTotalPresent       = "Total Present"
	colWorkingDays        = "Working Days"
	colHolidays           = "Holidays"
	colWeekOff            = "Week Off"
	colLeave              = "Leave"
	colPaidDays           = "Paid Days"
	colAbsent             = "Absent"
	colAbsentWithLeave    = "Absent With Leave"
	colAbsentWithoutLeave = "Absent Without Leave"
	colPayableRatio       = "Payable Ratio"
)

var workbookHeader = []string{
	colID, colEmpCode, colEmpName, colDesignation, colDepartment, colMonth, colYear,
	colTotalPresent, colWorkingDays, colHolidays, colWeekOff, colLeave, colPaidDays,
	colAbsent, colAbsentWithLeave, colAbsentWithoutLeave, colPayableRatio,
}

// Columns an imported workbook must carry. Absent and Payable Ratio are
// derived and ignored on import.
var requiredImportColumns = []string{
	colID, colEmpCode, colTotalPresent, colWorkingDays, colHolidays, colWeekOff,
	colLeave, colPaidDays, colAbsentWithLeave, colAbsentWithoutLeave,
}

func sheetName(p period.Period) string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}

func exportFilename(p period.Period, ext string) string {
	company := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, p.CompanyName)
	return fmt.Sprintf("attendance-summary_%s_%04d-%02d.%s", company, p.Year, p.Month, ext)
}

// renderWorkbook writes one sheet with a styled header and one row per summary.
func renderWorkbook(p period.Period, rows []summary.AttendanceSummary, directory map[string]employee.Employee) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(p)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(workbookHeader))
	for i, h := range workbookHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(workbookHeader))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range rows {
		emp := directory[s.EmpCode]
		ratio, _ := s.PayableRatio().Float64()
		values := []interface{}{
			s.ID, s.EmpCode, emp.Name, emp.Designation, emp.Department, p.MonthName(), s.Year,
			s.TotalPresent, s.WorkingDays, s.Holidays, s.WeekOff, s.Leave, s.PaidDays,
			s.Absent, s.AbsentWithLeave, s.AbsentWithoutLeave, ratio,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", s.EmpCode, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return nil, fmt.Errorf("failed to size id column: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 16); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// workbookRow is one data row of an imported workbook. Err is set when a
// cell of the row could not be read.
type workbookRow struct {
	Line    int
	ID      string
	EmpCode string
	Update  summary.UpdateSummaryRequest
	Err     error
}

// parseWorkbook reads the first sheet of an exported workbook. Columns are
// located by header name. Blank rows are skipped.
func parseWorkbook(r io.Reader) ([]workbookRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", summary.ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", summary.ErrInvalidWorkbook)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", summary.ErrInvalidWorkbook, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", summary.ErrInvalidWorkbook)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range requiredImportColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", summary.ErrInvalidWorkbook, strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i := index[strings.ToLower(col)]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []workbookRow
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		wr := workbookRow{
			Line:    i + 2,
			ID:      cell(row, colID),
			EmpCode: cell(row, colEmpCode),
		}
		wr.Update.ID = wr.ID

		counters := []struct {
			col string
			dst **int
		}{
			{colTotalPresent, &wr.Update.TotalPresent},
			{colWorkingDays, &wr.Update.WorkingDays},
			{colHolidays, &wr.Update.Holidays},
			{colWeekOff, &wr.Update.WeekOff},
			{colLeave, &wr.Update.Leave},
			{colPaidDays, &wr.Update.PaidDays},
			{colAbsentWithLeave, &wr.Update.AbsentWithLeave},
			{colAbsentWithoutLeave, &wr.Update.AbsentWithoutLeave},
		}
		for _, c := range counters {
			raw := cell(row, c.col)
			if raw == "" {
				continue
			}
			n, err := parseCount(raw)
			if err != nil {
				wr.Err = fmt.Errorf("%s: %w", c.col, err)
				break
			}
			*c.dst = &n
		}

		out = append(out, wr)
	}

	return out, nil
}

func parseCount(raw string) (int, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(d.IntPart()), nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
