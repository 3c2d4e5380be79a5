package core

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrdesk/internal/domain/auth"
)

// FilterEmployeeFields strips contact details and salary unless the viewer
// manages employees or is looking at their own record.
func FilterEmployeeFields(emp *Employee, user auth.UserContext) {
	if user.Can(auth.PermEmployeesRead) || user.EmployeeID == emp.ID {
		return
	}
	emp.ContactNumber = ""
	emp.Address = ""
	emp.Salary = decimal.Zero
	emp.LastLogin = nil
}

func formatBadge(n int) string {
	return fmt.Sprintf("%04d", n)
}
