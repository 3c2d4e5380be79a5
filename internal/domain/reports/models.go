package reports

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AnnualLeaveEntitlement is the yearly allowance shown on the employee
// dashboard. Only approved leave starting in the current year counts.
const AnnualLeaveEntitlement = 14

// recentPendingLimit is how many pending leave requests the overview lists.
const recentPendingLimit = 5

type LeaveBalance struct {
	Entitlement int `json:"entitlement"`
	Used        int `json:"used"`
	Remaining   int `json:"remaining"`
}

type Coworker struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

type PayslipSummary struct {
	PayrollID        string          `json:"payrollId"`
	PeriodStart      time.Time       `json:"periodStart"`
	NetSalary        decimal.Decimal `json:"netSalary"`
	PaymentReference string          `json:"paymentReference"`
}

type EmployeeDashboard struct {
	Name             string          `json:"name"`
	Department       string          `json:"department"`
	Position         string          `json:"position"`
	JoinDate         time.Time       `json:"joinDate"`
	Leave            LeaveBalance    `json:"leave"`
	CoworkersOnLeave []Coworker      `json:"coworkersOnLeave"`
	LatestPayslip    *PayslipSummary `json:"latestPayslip"`
}

type PendingLeave struct {
	ID           string    `json:"id"`
	EmployeeName string    `json:"employeeName"`
	LeaveType    string    `json:"leaveType"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	RequestDate  time.Time `json:"requestDate"`
}

type Overview struct {
	Date           time.Time      `json:"date"`
	TotalEmployees int            `json:"totalEmployees"`
	PresentToday   int            `json:"presentToday"`
	OnLeaveToday   int            `json:"onLeaveToday"`
	PendingLeaves  int            `json:"pendingLeaves"`
	RecentPending  []PendingLeave `json:"recentPending"`
}

type JobRun struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type JobRunFilter struct {
	JobType string
	Status  string
	Limit   int
	Offset  int
}

type JobRunList struct {
	Items []JobRun `json:"items"`
	Total int      `json:"total"`
}
