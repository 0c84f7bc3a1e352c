package summary

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/jung-kurt/gofpdf"
)

const pdfContentType = "application/pdf"

type reportColumn struct {
	title string
	width float64
	align string
	value func(s summary.AttendanceSummary, emp employee.Employee) string
}

var reportColumns = []reportColumn{
	{"Emp Code", 24, "L", func(s summary.AttendanceSummary, _ employee.Employee) string { return s.EmpCode }},
	{"Name", 52, "L", func(_ summary.AttendanceSummary, e employee.Employee) string { return e.Name }},
	{"Department", 38, "L", func(_ summary.AttendanceSummary, e employee.Employee) string { return e.Department }},
	{"Working", 18, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return strconv.Itoa(s.WorkingDays) }},
	{"Present", 18, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return strconv.Itoa(s.TotalPresent) }},
	{"Leave", 16, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return strconv.Itoa(s.Leave) }},
	{"Abs. w/ Leave", 24, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return strconv.Itoa(s.AbsentWithLeave) }},
	{"Abs. w/o Leave", 26, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return strconv.Itoa(s.AbsentWithoutLeave) }},
	{"Paid", 16, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return strconv.Itoa(s.PaidDays) }},
	{"Ratio", 20, "R", func(s summary.AttendanceSummary, _ employee.Employee) string { return s.PayableRatio().StringFixed(4) }},
}

// renderReport lays the period out as a landscape A4 table with a header
// repeated on every page.
func renderReport(p period.Period, rows []summary.AttendanceSummary, directory map[string]employee.Employee, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Attendance Summary - %s", p.CompanyName)), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s %d", p.MonthName(), p.Year), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range reportColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(140, 6, fmt.Sprintf("Generated %s", generatedAt.Format("02 January 2006 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)
	for _, s := range rows {
		emp := directory[s.EmpCode]
		for _, col := range reportColumns {
			pdf.CellFormat(col.width, 6, tr(col.value(s, emp)), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
