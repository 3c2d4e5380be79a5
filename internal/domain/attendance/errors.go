package attendance

import "errors"

var (
	ErrAlreadyCheckedIn   = errors.New("already checked in for this date")
	ErrNotCheckedIn       = errors.New("no check-in recorded for this date")
	ErrAlreadyCheckedOut  = errors.New("already checked out for this date")
	ErrRecordNotFound     = errors.New("attendance record not found")
	ErrRecordExists       = errors.New("attendance record already exists for this date")
	ErrInvalidStatus      = errors.New("invalid attendance status")
	ErrInvalidClock       = errors.New("invalid time of day")
	ErrManualStatusNeeded = errors.New("status must be Absent or On Leave when no times are given")
	ErrPhotoNotFound      = errors.New("photo not found")
)
