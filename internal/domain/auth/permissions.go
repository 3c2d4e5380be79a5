package auth

import (
	"context"
	"slices"
)

const (
	RoleEmployee      = "Employee"
	RoleHRManager     = "HRManager"
	RoleAdministrator = "Administrator"
)

var Roles = []string{RoleEmployee, RoleHRManager, RoleAdministrator}

func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

const (
	PermEmployeesRead     = "employees.read"
	PermEmployeesWrite    = "employees.write"
	PermAttendanceSelf    = "attendance.self"
	PermAttendanceRead    = "attendance.read"
	PermAttendanceManage  = "attendance.manage"
	PermLeaveRequest      = "leave.request"
	PermLeaveRead         = "leave.read"
	PermLeaveApprove      = "leave.approve"
	PermPayrollSelf       = "payroll.self"
	PermPayrollRead       = "payroll.read"
	PermPayrollRun        = "payroll.run"
	PermPerformanceSelf   = "performance.self"
	PermPerformanceRead   = "performance.read"
	PermPerformanceReview = "performance.review"
	PermAuditRead         = "audit.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermAttendanceSelf,
	PermAttendanceRead,
	PermAttendanceManage,
	PermLeaveRequest,
	PermLeaveRead,
	PermLeaveApprove,
	PermPayrollSelf,
	PermPayrollRead,
	PermPayrollRun,
	PermPerformanceSelf,
	PermPerformanceRead,
	PermPerformanceReview,
	PermAuditRead,
	PermSystemAdmin,
}

var selfService = []string{
	PermAttendanceSelf,
	PermLeaveRequest,
	PermPayrollSelf,
	PermPerformanceSelf,
}

// RolePermissions is fixed at build time; there is no role editor.
var RolePermissions = map[string][]string{
	RoleEmployee: selfService,
	RoleHRManager: append(slices.Clone(selfService),
		PermEmployeesRead,
		PermEmployeesWrite,
		PermAttendanceRead,
		PermLeaveRead,
		PermLeaveApprove,
		PermPayrollRead,
		PermPayrollRun,
		PermPerformanceRead,
		PermPerformanceReview,
	),
	RoleAdministrator: DefaultPermissions,
}

// UserContext is the authenticated caller attached to a request context.
type UserContext struct {
	UserID     string
	EmployeeID string
	RoleName   string
}

func (u UserContext) Can(permission string) bool {
	return slices.Contains(RolePermissions[u.RoleName], permission)
}

func (u UserContext) IsAdmin() bool {
	return u.RoleName == RoleAdministrator
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return slices.Contains(RolePermissions[role], permission), nil
}
