package payroll

import "github.com/shopspring/decimal"

type Statutory struct {
	EmployeeEPF   decimal.Decimal `json:"employeeEpf"`
	EmployerEPF   decimal.Decimal `json:"employerEpf"`
	EmployeeSOCSO decimal.Decimal `json:"employeeSocso"`
	EmployerSOCSO decimal.Decimal `json:"employerSocso"`
	EmployeeEIS   decimal.Decimal `json:"employeeEis"`
	EmployerEIS   decimal.Decimal `json:"employerEis"`
}

// Statutory applies the flat contribution rates to the base salary,
// rounding each amount to 2 dp.
func (r Rates) Statutory(baseSalary decimal.Decimal) Statutory {
	return Statutory{
		EmployeeEPF:   round2(baseSalary.Mul(r.EPF.Employee)),
		EmployerEPF:   round2(baseSalary.Mul(r.EPF.Employer)),
		EmployeeSOCSO: round2(baseSalary.Mul(r.SOCSO.Employee)),
		EmployerSOCSO: round2(baseSalary.Mul(r.SOCSO.Employer)),
		EmployeeEIS:   round2(baseSalary.Mul(r.EIS.Employee)),
		EmployerEIS:   round2(baseSalary.Mul(r.EIS.Employer)),
	}
}

func (s Statutory) EmployeeTotal() decimal.Decimal {
	return s.EmployeeEPF.Add(s.EmployeeSOCSO).Add(s.EmployeeEIS)
}

func (s Statutory) EmployerTotal() decimal.Decimal {
	return s.EmployerEPF.Add(s.EmployerSOCSO).Add(s.EmployerEIS)
}
