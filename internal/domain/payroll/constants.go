package payroll

const (
	StandardWorkDaysPerMonth = 26
	StandardHoursPerDay      = 8

	PaymentStatusGenerated = "Generated"
)

type MaritalStatus string

const (
	MaritalSingle                  MaritalStatus = "Single"
	MaritalMarriedNonWorkingSpouse MaritalStatus = "MarriedNonWorkingSpouse"
	MaritalMarriedWorkingSpouse    MaritalStatus = "MarriedWorkingSpouse"
)

var MaritalStatuses = []string{
	string(MaritalSingle),
	string(MaritalMarriedNonWorkingSpouse),
	string(MaritalMarriedWorkingSpouse),
}

// ParseMaritalStatus accepts the canonical names; blank means Single.
func ParseMaritalStatus(value string) (MaritalStatus, error) {
	switch MaritalStatus(value) {
	case "", MaritalSingle:
		return MaritalSingle, nil
	case MaritalMarriedNonWorkingSpouse, MaritalMarriedWorkingSpouse:
		return MaritalStatus(value), nil
	}
	return "", ErrInvalidMaritalStatus
}
