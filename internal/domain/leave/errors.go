package leave

import "errors"

var (
	ErrRequestNotFound = errors.New("leave request not found")
	ErrReasonRequired  = errors.New("reason is required")
	ErrInvalidType     = errors.New("invalid leave type")
	ErrInvalidRange    = errors.New("end date cannot be earlier than start date")
	ErrNotPending      = errors.New("leave request is no longer pending")
	ErrNotOwner        = errors.New("leave request belongs to another employee")
)
