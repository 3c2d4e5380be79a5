package payroll

import "github.com/shopspring/decimal"

var monthsPerYear = decimal.NewFromInt(12)

// PCBBreakdown keeps every intermediate of the monthly tax deduction.
type PCBBreakdown struct {
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	YearlyIncome     decimal.Decimal `json:"yearlyIncome"`
	EPFRelief        decimal.Decimal `json:"epfRelief"`
	SOCSORelief      decimal.Decimal `json:"socsoRelief"`
	EISRelief        decimal.Decimal `json:"eisRelief"`
	IndividualRelief decimal.Decimal `json:"individualRelief"`
	MarriageRelief   decimal.Decimal `json:"marriageRelief"`
	TotalRelief      decimal.Decimal `json:"totalRelief"`
	TaxableIncome    decimal.Decimal `json:"taxableIncome"`
	YearlyTax        decimal.Decimal `json:"yearlyTax"`
	MonthlyPCB       decimal.Decimal `json:"monthlyPcb"`
}

// Compute annualises the monthly income, subtracts reliefs and runs the
// remainder through the progressive schedule.
func (s PCBSchedule) Compute(monthlyIncome decimal.Decimal, status MaritalStatus) PCBBreakdown {
	b := PCBBreakdown{MonthlyIncome: monthlyIncome}
	b.YearlyIncome = monthlyIncome.Mul(monthsPerYear)

	b.EPFRelief = s.EPFRelief.Apply(b.YearlyIncome)
	b.SOCSORelief = s.SOCSORelief.Apply(b.YearlyIncome)
	b.EISRelief = s.EISRelief.Apply(b.YearlyIncome)
	b.IndividualRelief = s.IndividualRelief
	b.MarriageRelief = decimal.Zero
	if status == MaritalMarriedNonWorkingSpouse {
		b.MarriageRelief = s.SpouseRelief
	}

	b.TotalRelief = b.IndividualRelief.
		Add(b.EPFRelief).
		Add(b.SOCSORelief).
		Add(b.EISRelief).
		Add(b.MarriageRelief)
	b.TaxableIncome = b.YearlyIncome.Sub(b.TotalRelief)
	if !b.TaxableIncome.IsPositive() {
		b.YearlyTax = decimal.Zero
		b.MonthlyPCB = decimal.Zero
		return b
	}

	b.YearlyTax = s.YearlyTax(b.TaxableIncome)
	b.MonthlyPCB = round2(b.YearlyTax.Div(monthsPerYear))
	return b
}

// YearlyTax applies the bracket containing taxable. Upper bounds are inclusive.
func (s PCBSchedule) YearlyTax(taxable decimal.Decimal) decimal.Decimal {
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	for _, bracket := range s.Brackets {
		if bracket.Open || taxable.LessThanOrEqual(bracket.UpTo) {
			return bracket.Base.Add(taxable.Sub(bracket.Over).Mul(bracket.Rate))
		}
	}
	return decimal.Zero
}

// MonthlyPCB is the embedded-schedule shortcut used by the CLI and tests.
func MonthlyPCB(monthlyIncome decimal.Decimal, status MaritalStatus) decimal.Decimal {
	return DefaultRates().PCB.Compute(monthlyIncome, status).MonthlyPCB
}
