package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatutoryContributions(t *testing.T) {
	s := DefaultRates().Statutory(d("3000"))

	assertMoney(t, "330.00", s.EmployeeEPF, "employeeEPF")
	assertMoney(t, "390.00", s.EmployerEPF, "employerEPF")
	// 3000 × 0.007833 = 23.499
	assertMoney(t, "23.50", s.EmployeeSOCSO, "employeeSOCSO")
	// 3000 × 0.027433 = 82.299
	assertMoney(t, "82.30", s.EmployerSOCSO, "employerSOCSO")
	// 3000 × 0.003133 = 9.399
	assertMoney(t, "9.40", s.EmployeeEIS, "employeeEIS")
	assert.True(t, s.EmployeeEIS.Equal(s.EmployerEIS))
	assertMoney(t, "362.90", s.EmployeeTotal(), "employeeTotal")
	assertMoney(t, "481.70", s.EmployerTotal(), "employerTotal")
}

func TestStatutoryRoundsHalfToEven(t *testing.T) {
	// 5000 × 0.007833 = 39.165 and 5000 × 0.003133 = 15.665
	s := DefaultRates().Statutory(d("5000"))
	assertMoney(t, "39.16", s.EmployeeSOCSO, "employeeSOCSO")
	assertMoney(t, "15.66", s.EmployeeEIS, "employeeEIS")
}

func TestLoadRatesRejectsBadDocuments(t *testing.T) {
	_, err := LoadRates([]byte("contributions: {}"))
	require.Error(t, err)

	_, err = LoadRates([]byte(`
contributions:
  epf: {employee: "x", employer: "0.13"}
  socso: {employee: "0", employer: "0"}
  eis: {employee: "0", employer: "0"}
pcb:
  individual_relief: "9000"
  spouse_relief: "4000"
  reliefs:
    epf: {rate: "0", cap: "0"}
    socso: {rate: "0", cap: "0"}
    eis: {rate: "0", cap: "0"}
  brackets:
    - {base: "0", rate: "0", over: "0"}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contributions.epf.employee")
}

func TestDefaultRatesBracketCount(t *testing.T) {
	brackets := DefaultRates().PCB.Brackets
	require.Len(t, brackets, 11)
	assert.True(t, brackets[len(brackets)-1].Open)
}
