package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as "RM 1,234.56".
func FormatMoney(d decimal.Decimal) string {
	return "RM " + groupThousands(d.StringFixedBank(2))
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if frac != "" {
		out += "." + frac
	}
	return out
}

// Breakdown renders a computed result as a plain-text report.
func Breakdown(in Input, res Result) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("Base Salary Breakdown:")
	line("  Monthly Salary: %s", FormatMoney(in.BaseSalary))
	line("  Daily Rate: %s (Base ÷ %d days)", FormatMoney(res.DailyRate), StandardWorkDaysPerMonth)
	line("  Hourly Rate: %s (Daily ÷ %d hours)", FormatMoney(res.HourlyRate), StandardHoursPerDay)
	line("")
	line("Overtime (1.5x): %s hours × %s = %s", in.OvertimeHours, FormatMoney(res.HourlyRate.Mul(overtimeMultiplier)), FormatMoney(res.Overtime))
	line("Public Holiday (3x): %s days × %s = %s", in.PublicHolidayDays, FormatMoney(res.DailyRate.Mul(publicHolidayMultiplier)), FormatMoney(res.PublicHoliday))
	line("Public Holiday OT (3x): %s hours × %s = %s", in.PublicHolidayOTHours, FormatMoney(res.HourlyRate.Mul(publicHolidayOTMultiplier)), FormatMoney(res.PublicHolidayOT))
	line("Bonus: %s", FormatMoney(res.Bonus))
	line("Total Earnings: %s", FormatMoney(res.TotalEarnings))
	line("")
	line("Statutory Contributions (Employee / Employer):")
	line("  EPF: %s / %s", FormatMoney(res.EmployeeEPF), FormatMoney(res.EmployerEPF))
	line("  SOCSO: %s / %s", FormatMoney(res.EmployeeSOCSO), FormatMoney(res.EmployerSOCSO))
	line("  EIS: %s / %s", FormatMoney(res.EmployeeEIS), FormatMoney(res.EmployerEIS))
	line("")
	if in.PCBEnabled {
		p := res.PCB
		line("PCB Calculation (%s):", in.MaritalStatus)
		line("  Yearly Income: %s", FormatMoney(p.YearlyIncome))
		line("  Individual Relief: %s", FormatMoney(p.IndividualRelief))
		line("  EPF Relief: %s", FormatMoney(p.EPFRelief))
		line("  SOCSO Relief: %s", FormatMoney(p.SOCSORelief.Add(p.EISRelief)))
		line("  Marriage Relief: %s", FormatMoney(p.MarriageRelief))
		line("  Total Relief: %s", FormatMoney(p.TotalRelief))
		line("  Taxable Income: %s", FormatMoney(p.TaxableIncome))
		line("  Yearly Tax: %s", FormatMoney(p.YearlyTax))
		line("  Monthly PCB: %s", FormatMoney(p.MonthlyPCB))
	} else {
		line("Tax Deductions (manual): %s", FormatMoney(res.TaxDeductions))
	}
	line("Other Deductions: %s", FormatMoney(res.OtherDeductions))
	line("")
	line("Net Salary = Base + OT + PH + PH OT + Bonus - Deductions - Tax")
	line("Net Salary: %s", FormatMoney(res.NetSalary))
	return b.String()
}
