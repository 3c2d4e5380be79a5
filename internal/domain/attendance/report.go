package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	summaryHeader = []string{"Employee", "Total Days", "Present", "Late", "Absent", "Average Check-In Time"}
	detailHeader  = []string{"Date", "Employee", "Check In", "Check Out", "Status", "Duration"}
)

type EmployeeSummary struct {
	EmployeeID     string `json:"employeeId"`
	EmployeeName   string `json:"employeeName"`
	TotalDays      int    `json:"totalDays"`
	Present        int    `json:"present"`
	Late           int    `json:"late"`
	Absent         int    `json:"absent"`
	AverageCheckIn Clock  `json:"averageCheckIn"`
}

// Report is the monthly attendance summary plus the detail rows it was
// built from, ordered by employee name and date.
type Report struct {
	Period  time.Time         `json:"period"`
	Summary []EmployeeSummary `json:"summary"`
	Records []Record          `json:"records"`
}

func BuildReport(period time.Time, records []Record) Report {
	r := Report{Period: period, Records: records, Summary: []EmployeeSummary{}}
	index := map[string]int{}
	checkInTotals := map[string]time.Duration{}
	checkInCounts := map[string]int{}

	for _, rec := range records {
		i, ok := index[rec.EmployeeID]
		if !ok {
			i = len(r.Summary)
			index[rec.EmployeeID] = i
			r.Summary = append(r.Summary, EmployeeSummary{EmployeeID: rec.EmployeeID, EmployeeName: rec.EmployeeName})
		}
		sum := &r.Summary[i]
		sum.TotalDays++
		switch rec.Status {
		case StatusPresent:
			sum.Present++
		case StatusLate:
			sum.Late++
		case StatusAbsent:
			sum.Absent++
		}
		if rec.CheckIn != nil {
			checkInTotals[rec.EmployeeID] += rec.CheckIn.Duration()
			checkInCounts[rec.EmployeeID]++
		}
	}

	for i := range r.Summary {
		id := r.Summary[i].EmployeeID
		if n := checkInCounts[id]; n > 0 {
			r.Summary[i].AverageCheckIn = Clock(checkInTotals[id] / time.Duration(n))
		}
	}
	return r
}

func (r Report) FileName(ext string) string {
	return fmt.Sprintf("Attendance_Report_%s.%s", r.Period.Format("200601"), ext)
}

func (r Report) summaryRows() [][]string {
	rows := make([][]string, 0, len(r.Summary))
	for _, s := range r.Summary {
		rows = append(rows, []string{
			s.EmployeeName,
			fmt.Sprint(s.TotalDays),
			fmt.Sprint(s.Present),
			fmt.Sprint(s.Late),
			fmt.Sprint(s.Absent),
			s.AverageCheckIn.HHMM(),
		})
	}
	return rows
}

func (r Report) detailRows() [][]string {
	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		checkIn, checkOut, duration := "-", "-", "-"
		if rec.CheckIn != nil {
			checkIn = rec.CheckIn.HHMM()
		}
		if rec.CheckOut != nil {
			checkOut = rec.CheckOut.HHMM()
		}
		if span, ok := rec.WorkDuration(); ok {
			duration = FormatSpan(span)
		}
		rows = append(rows, []string{
			rec.Date.Format("2006-01-02"),
			rec.EmployeeName,
			checkIn,
			checkOut,
			string(rec.Status),
			duration,
		})
	}
	return rows
}

// WriteCSV writes the summary section followed by the detail section.
func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Report Period: " + r.Period.Format("January 2006")},
		{},
		{"ATTENDANCE SUMMARY"},
		summaryHeader,
	}
	records = append(records, r.summaryRows()...)
	records = append(records, []string{}, []string{"DETAILED ATTENDANCE RECORDS"}, detailHeader)
	records = append(records, r.detailRows()...)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write attendance csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Summary and a Details sheet.
func (r Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	sheets := []struct {
		name   string
		title  string
		header []string
		rows   [][]string
	}{
		{"Summary", "Report Period: " + r.Period.Format("January 2006"), summaryHeader, r.summaryRows()},
		{"Details", "Detailed Attendance Records", detailHeader, r.detailRows()},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("xlsx sheet %s: %w", sheet.name, err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("xlsx sheet %s: %w", sheet.name, err)
		}
		if err := f.SetCellValue(sheet.name, "A1", sheet.title); err != nil {
			return err
		}
		if err := writeRow(f, sheet.name, 3, sheet.header); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(sheet.header), 3)
		if err := f.SetCellStyle(sheet.name, "A3", last, headerStyle); err != nil {
			return err
		}
		for j, row := range sheet.rows {
			if err := writeRow(f, sheet.name, 4+j, row); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(sheet.name, "A", "F", 18); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write attendance xlsx: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
