package payroll

import "github.com/shopspring/decimal"

var (
	workDaysPerMonth = decimal.NewFromInt(StandardWorkDaysPerMonth)
	workHoursPerDay  = decimal.NewFromInt(StandardHoursPerDay)

	overtimeMultiplier        = decimal.RequireFromString("1.5")
	publicHolidayMultiplier   = decimal.NewFromInt(3)
	publicHolidayOTMultiplier = decimal.NewFromInt(3)
)

// Input is one employee-month of raw payroll figures.
type Input struct {
	BaseSalary           decimal.Decimal `json:"baseSalary"`
	OvertimeHours        decimal.Decimal `json:"overtimeHours"`
	PublicHolidayDays    decimal.Decimal `json:"publicHolidayDays"`
	PublicHolidayOTHours decimal.Decimal `json:"publicHolidayOtHours"`
	Bonus                decimal.Decimal `json:"bonus"`
	OtherDeductions      decimal.Decimal `json:"otherDeductions"`
	// ManualTax is used as the tax deduction when PCBEnabled is false.
	ManualTax     decimal.Decimal `json:"manualTax"`
	MaritalStatus MaritalStatus   `json:"maritalStatus"`
	PCBEnabled    bool            `json:"pcbEnabled"`
}

type Earnings struct {
	Overtime        decimal.Decimal `json:"overtime"`
	PublicHoliday   decimal.Decimal `json:"publicHoliday"`
	PublicHolidayOT decimal.Decimal `json:"publicHolidayOt"`
	Bonus           decimal.Decimal `json:"bonus"`
}

// Result is derived from an Input and never stored on its own.
type Result struct {
	DailyRate  decimal.Decimal `json:"dailyRate"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	Earnings
	Statutory
	PCB             PCBBreakdown    `json:"pcb"`
	TaxDeductions   decimal.Decimal `json:"taxDeductions"`
	OtherDeductions decimal.Decimal `json:"otherDeductions"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetSalary       decimal.Decimal `json:"netSalary"`
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// DailyRate is the monthly base over the standard working days.
func DailyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(workDaysPerMonth)
}

// HourlyRate is the daily rate over the standard working hours.
func HourlyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return DailyRate(baseSalary).Div(workHoursPerDay)
}

// ComputeEarnings prices overtime and public-holiday work; each line is
// rounded to 2 dp on its own.
func ComputeEarnings(baseSalary, overtimeHours, publicHolidayDays, publicHolidayOTHours, bonus decimal.Decimal) Earnings {
	daily := DailyRate(baseSalary)
	hourly := HourlyRate(baseSalary)
	return Earnings{
		Overtime:        round2(overtimeHours.Mul(hourly.Mul(overtimeMultiplier))),
		PublicHoliday:   round2(publicHolidayDays.Mul(daily.Mul(publicHolidayMultiplier))),
		PublicHolidayOT: round2(publicHolidayOTHours.Mul(hourly.Mul(publicHolidayOTMultiplier))),
		Bonus:           bonus,
	}
}

// NetSalary sums base pay and earnings, then subtracts other deductions and
// the tax deduction. Statutory contributions are not part of it.
func NetSalary(baseSalary decimal.Decimal, e Earnings, otherDeductions, taxDeductions decimal.Decimal) decimal.Decimal {
	return baseSalary.
		Add(e.Overtime).
		Add(e.PublicHoliday).
		Add(e.PublicHolidayOT).
		Add(e.Bonus).
		Sub(otherDeductions).
		Sub(taxDeductions)
}

type Calculator struct {
	Rates Rates
}

func NewCalculator(rates Rates) *Calculator {
	return &Calculator{Rates: rates}
}

// Compute runs rates, earnings, statutory deductions and the net aggregate.
func (c *Calculator) Compute(in Input) Result {
	res := Result{
		DailyRate:       DailyRate(in.BaseSalary),
		HourlyRate:      HourlyRate(in.BaseSalary),
		Earnings:        ComputeEarnings(in.BaseSalary, in.OvertimeHours, in.PublicHolidayDays, in.PublicHolidayOTHours, in.Bonus),
		Statutory:       c.Rates.Statutory(in.BaseSalary),
		OtherDeductions: in.OtherDeductions,
	}

	if in.PCBEnabled {
		res.PCB = c.Rates.PCB.Compute(in.BaseSalary, in.MaritalStatus)
		res.TaxDeductions = res.PCB.MonthlyPCB
	} else {
		res.TaxDeductions = in.ManualTax
	}

	res.TotalEarnings = in.BaseSalary.
		Add(res.Overtime).
		Add(res.PublicHoliday).
		Add(res.PublicHolidayOT).
		Add(res.Bonus)
	res.TotalDeductions = res.Statutory.EmployeeTotal().
		Add(res.TaxDeductions).
		Add(res.OtherDeductions)
	res.NetSalary = NetSalary(in.BaseSalary, res.Earnings, res.OtherDeductions, res.TaxDeductions)
	return res
}

// Compute uses the embedded statutory table.
func Compute(in Input) Result {
	return NewCalculator(DefaultRates()).Compute(in)
}
