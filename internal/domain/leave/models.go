package leave

import "time"

type Request struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	Type           string     `json:"leaveType"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	Days           int        `json:"days"`
	Reason         string     `json:"reason"`
	Status         Status     `json:"status"`
	RequestDate    time.Time  `json:"requestDate"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	ApprovedByName string     `json:"approvedByName,omitempty"`
	ApprovedDate   *time.Time `json:"approvedDate,omitempty"`
}

type NewRequest struct {
	EmployeeID string
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

type Filter struct {
	EmployeeID string
	Status     Status
	Limit      int
	Offset     int
}

type ListResult struct {
	Items []Request `json:"items"`
	Total int       `json:"total"`
}
