package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one generated employee-month payroll. All computed amounts are
// stored so the payslip can be reprinted without recomputing.
type Record struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	EmployeeNumber   int             `json:"employeeNumber"`
	EmployeeName     string          `json:"employeeName"`
	Position         string          `json:"position"`
	Department       string          `json:"department"`
	PayPeriodStart   time.Time       `json:"payPeriodStart"`
	PayPeriodEnd     time.Time       `json:"payPeriodEnd"`
	Input            Input           `json:"input"`
	Overtime         decimal.Decimal `json:"overtimePay"`
	PublicHoliday    decimal.Decimal `json:"publicHolidayPay"`
	PublicHolidayOT  decimal.Decimal `json:"publicHolidayOtPay"`
	Statutory        Statutory       `json:"statutory"`
	TaxDeductions    decimal.Decimal `json:"taxDeductions"`
	NetSalary        decimal.Decimal `json:"netSalary"`
	PaymentDate      time.Time       `json:"paymentDate"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentReference string          `json:"paymentReference"`
	HasPayslip       bool            `json:"hasPayslip"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (r Record) TotalEarnings() decimal.Decimal {
	return r.Input.BaseSalary.Add(r.Overtime).Add(r.PublicHoliday).Add(r.PublicHolidayOT).Add(r.Input.Bonus)
}

func (r Record) TotalDeductions() decimal.Decimal {
	return r.Statutory.EmployeeTotal().Add(r.TaxDeductions).Add(r.Input.OtherDeductions)
}

// GenerateRequest names the employee and month to pay. A zero BaseSalary in
// Input is replaced by the employee's recorded salary.
type GenerateRequest struct {
	EmployeeID string    `json:"employeeId"`
	Month      time.Time `json:"month"`
	Input      Input     `json:"input"`
}

type Filter struct {
	EmployeeID string
	// Month selects records whose period starts in that month; zero means all.
	Month  time.Time
	Limit  int
	Offset int
}

type ListResult struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
}

// MonthBounds returns the first and last calendar day of t's month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
