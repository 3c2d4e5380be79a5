package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a user row joined to its employee row. The two are created
// and deleted together.
type Employee struct {
	ID              string          `json:"id"`
	Number          int             `json:"number"`
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            string          `json:"role"`
	Department      string          `json:"department"`
	Position        string          `json:"position"`
	Salary          decimal.Decimal `json:"salary"`
	JoinDate        time.Time       `json:"joinDate"`
	ContactNumber   string          `json:"contactNumber,omitempty"`
	Address         string          `json:"address,omitempty"`
	HasProfileImage bool            `json:"hasProfileImage"`
	LastLogin       *time.Time      `json:"lastLogin,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BadgeNumber is the zero-padded number printed on ID cards.
func (e Employee) BadgeNumber() string {
	return formatBadge(e.Number)
}

type EmployeeInput struct {
	Name          string
	Email         string
	Password      string
	Role          string
	Department    string
	Position      string
	Salary        decimal.Decimal
	JoinDate      time.Time
	ContactNumber string
	Address       string
}

// SalaryInfo is the payroll view of an employee.
type SalaryInfo struct {
	EmployeeID string          `json:"employeeId"`
	Name       string          `json:"name"`
	Position   string          `json:"position"`
	Department string          `json:"department"`
	Salary     decimal.Decimal `json:"salary"`
}

type Filter struct {
	Search     string
	Department string
	Limit      int
	Offset     int
}

type ListResult struct {
	Items []Employee `json:"items"`
	Total int        `json:"total"`
}
