package payroll

import "errors"

var (
	ErrPayrollNotFound      = errors.New("payroll not found")
	ErrPayrollExists        = errors.New("payroll already exists for this employee and month")
	ErrInvalidMaritalStatus = errors.New("invalid marital status")
	ErrInvalidMonth         = errors.New("invalid payroll month")
	ErrNegativeAmount       = errors.New("amounts must not be negative")
	ErrTooManyDecimals      = errors.New("amounts take at most two decimal places")
	ErrAmountOutOfRange     = errors.New("amount is out of range for one month")
	ErrPayslipNotReady      = errors.New("payslip has not been rendered")
)
