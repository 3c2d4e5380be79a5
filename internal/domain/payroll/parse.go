package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Input limits. Money fits NUMERIC(12,2) even after the 3x holiday
// multipliers; hours and days are bounded by the calendar month.
var (
	parseCeiling    = decimal.New(1, 12)
	maxMoney        = decimal.New(1, 8)
	maxMonthlyHours = decimal.NewFromInt(31 * 24)
	maxMonthlyDays  = decimal.NewFromInt(31)
)

// ParseAmount reads a numeric form value. Blank or unparsable input is zero,
// never an error. Exponent notation and magnitudes from 1e12 up count as
// unparsable.
func ParseAmount(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "RM")
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", "")
	if cleaned == "" || strings.ContainsAny(cleaned, "eE") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.Abs().GreaterThanOrEqual(parseCeiling) {
		return decimal.Zero
	}
	return d
}

// RawInput is the form-shaped variant of Input, every figure as text.
type RawInput struct {
	BaseSalary           string `json:"baseSalary"`
	OvertimeHours        string `json:"overtimeHours"`
	PublicHolidayDays    string `json:"publicHolidayDays"`
	PublicHolidayOTHours string `json:"publicHolidayOtHours"`
	Bonus                string `json:"bonus"`
	OtherDeductions      string `json:"otherDeductions"`
	ManualTax            string `json:"manualTax"`
	MaritalStatus        string `json:"maritalStatus"`
	PCBEnabled           bool   `json:"pcbEnabled"`
}

func (r RawInput) Parse() (Input, error) {
	status, err := ParseMaritalStatus(strings.TrimSpace(r.MaritalStatus))
	if err != nil {
		return Input{}, err
	}
	return Input{
		BaseSalary:           ParseAmount(r.BaseSalary),
		OvertimeHours:        ParseAmount(r.OvertimeHours),
		PublicHolidayDays:    ParseAmount(r.PublicHolidayDays),
		PublicHolidayOTHours: ParseAmount(r.PublicHolidayOTHours),
		Bonus:                ParseAmount(r.Bonus),
		OtherDeductions:      ParseAmount(r.OtherDeductions),
		ManualTax:            ParseAmount(r.ManualTax),
		MaritalStatus:        status,
		PCBEnabled:           r.PCBEnabled,
	}, nil
}

// Validate rejects negative figures, more than two decimal places and values
// the payroll columns cannot hold. Stored inputs then reproduce their totals.
func (in Input) Validate() error {
	for _, f := range []struct {
		value, max decimal.Decimal
	}{
		{in.BaseSalary, maxMoney},
		{in.OvertimeHours, maxMonthlyHours},
		{in.PublicHolidayDays, maxMonthlyDays},
		{in.PublicHolidayOTHours, maxMonthlyHours},
		{in.Bonus, maxMoney},
		{in.OtherDeductions, maxMoney},
		{in.ManualTax, maxMoney},
	} {
		switch {
		case f.value.IsNegative():
			return ErrNegativeAmount
		case !f.value.Equal(f.value.Round(2)):
			return ErrTooManyDecimals
		case f.value.GreaterThan(f.max):
			return ErrAmountOutOfRange
		}
	}
	return nil
}
