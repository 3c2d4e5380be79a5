package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const PayslipFooter = "This is a computer generated payslip and does not require signature"

type payLine struct {
	label  string
	amount decimal.Decimal
}

// A4 portrait geometry in millimetres.
const (
	pageMargin  = 15.0
	pageWidth   = 210.0
	columnWidth = (pageWidth - 2*pageMargin - 10) / 2
	lineHeight  = 7.0
)

// RenderPayslip draws a one-page A4 payslip for a stored payroll record.
func RenderPayslip(company string, rec Record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFillColor(0, 51, 102)
	pdf.Rect(0, 0, pageWidth, 34, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(pageMargin, 8)
	pdf.CellFormat(0, 8, company, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 7, "PAYSLIP", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Pay Period: %s - %s",
		rec.PayPeriodStart.Format("02/01/2006"), rec.PayPeriodEnd.Format("02/01/2006")), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	y := 42.0
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(pageMargin, y, pageWidth-2*pageMargin, 34, "F")
	pdf.SetFont("Helvetica", "", 10)
	details := [][2]string{
		{"Employee Name", rec.EmployeeName},
		{"Employee ID", fmt.Sprintf("%04d", rec.EmployeeNumber)},
		{"Position", rec.Position},
		{"Department", rec.Department},
	}
	for i, d := range details {
		pdf.SetXY(pageMargin+4, y+3+float64(i)*lineHeight)
		pdf.CellFormat(45, lineHeight, d[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineHeight, d[1], "", 0, "L", false, 0, "")
	}

	y += 42
	left := pageMargin
	right := pageMargin + columnWidth + 10

	earnings := []payLine{
		{"Basic Salary", rec.Input.BaseSalary},
		{"Overtime", rec.Overtime},
		{"Public Holiday", rec.PublicHoliday},
		{"Public Holiday OT", rec.PublicHolidayOT},
		{"Bonus", rec.Input.Bonus},
	}
	ey := section(pdf, "EARNINGS", left, y, earnings)
	total(pdf, "Total Earnings", rec.TotalEarnings(), left, ey)

	deductions := []payLine{
		{"KWSP (Employee 11%)", rec.Statutory.EmployeeEPF},
		{"SOCSO (Employee)", rec.Statutory.EmployeeSOCSO},
		{"EIS/SIP (Employee)", rec.Statutory.EmployeeEIS},
		{"PCB (Tax)", rec.TaxDeductions},
		{"Other Deductions", rec.Input.OtherDeductions},
	}
	dy := section(pdf, "DEDUCTIONS", right, y, deductions)
	dy = total(pdf, "Total Deductions", rec.TotalDeductions(), right, dy)

	dy += 6
	pdf.SetFillColor(0, 123, 255)
	pdf.Rect(right, dy, columnWidth, 12, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(right+3, dy+2)
	pdf.CellFormat(columnWidth/2, 8, "NET SALARY:", "", 0, "L", false, 0, "")
	pdf.CellFormat(columnWidth/2-6, 8, FormatMoney(rec.NetSalary), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	employer := []payLine{
		{"KWSP (Employer 13%)", rec.Statutory.EmployerEPF},
		{"SOCSO (Employer)", rec.Statutory.EmployerSOCSO},
		{"EIS/SIP (Employer)", rec.Statutory.EmployerEIS},
	}
	section(pdf, "EMPLOYER CONTRIBUTIONS", right, dy+20, employer)

	_, pageHeight := pdf.GetPageSize()
	fy := pageHeight - 36
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(pageMargin, fy, pageWidth-2*pageMargin, 24, "F")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(pageMargin+4, fy+3)
	pdf.CellFormat(0, 6, "Payment Date: "+rec.PaymentDate.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.SetX(pageMargin + 4)
	pdf.CellFormat(0, 6, "Payment Reference: "+rec.PaymentReference, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetX(pageMargin + 4)
	pdf.CellFormat(0, 6, PayslipFooter, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, x, y float64, lines []payLine) float64 {
	pdf.SetFillColor(0, 51, 102)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(columnWidth, 8, " "+title, "", 0, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	y += 10
	for _, l := range lines {
		pdf.SetXY(x, y)
		pdf.CellFormat(columnWidth*0.6, lineHeight, " "+l.label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidth*0.4, lineHeight, FormatMoney(l.amount)+" ", "B", 0, "R", false, 0, "")
		y += lineHeight
	}
	return y
}

func total(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, x, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y+2)
	pdf.CellFormat(columnWidth*0.6, lineHeight, " "+label, "", 0, "L", false, 0, "")
	pdf.CellFormat(columnWidth*0.4, lineHeight, FormatMoney(amount)+" ", "", 0, "R", false, 0, "")
	return y + 2 + lineHeight
}
