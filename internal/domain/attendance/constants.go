package attendance

import "time"

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusHalfDay Status = "Half Day"
	StatusAbsent  Status = "Absent"
	StatusOnLeave Status = "On Leave"
	StatusOT      Status = "OT"
)

var Statuses = []Status{
	StatusPresent,
	StatusLate,
	StatusHalfDay,
	StatusAbsent,
	StatusOnLeave,
	StatusOT,
}

// ParseStatus validates a stored or submitted status label.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

const (
	WorkStart   Clock = Clock(9 * time.Hour)
	WorkEnd     Clock = Clock(17 * time.Hour)
	FullWorkDay       = 8 * time.Hour
)

const (
	PhotoCheckIn  = "check-in"
	PhotoCheckOut = "check-out"
)
