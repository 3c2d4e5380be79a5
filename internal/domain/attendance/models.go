package attendance

import "time"

type State int

const (
	StateNoRecord State = iota
	StateCheckedIn
	StateCheckedOut
)

// Record is one attendance row per employee and date.
type Record struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	EmployeeName     string    `json:"employeeName,omitempty"`
	Date             time.Time `json:"date"`
	CheckIn          *Clock    `json:"checkIn,omitempty"`
	CheckOut         *Clock    `json:"checkOut,omitempty"`
	Status           Status    `json:"status"`
	Notes            string    `json:"notes,omitempty"`
	CheckInLocation  string    `json:"checkInLocation,omitempty"`
	CheckOutLocation string    `json:"checkOutLocation,omitempty"`
	HasCheckInPhoto  bool      `json:"hasCheckInPhoto"`
	HasCheckOutPhoto bool      `json:"hasCheckOutPhoto"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (r *Record) State() State {
	switch {
	case r == nil || r.CheckIn == nil:
		return StateNoRecord
	case r.CheckOut == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// WorkDuration is zero until both times are known.
func (r *Record) WorkDuration() (time.Duration, bool) {
	if r.CheckIn == nil || r.CheckOut == nil {
		return 0, false
	}
	return r.CheckOut.Sub(*r.CheckIn), true
}

// Event is a captured check-in or check-out.
type Event struct {
	At       Clock
	Photo    []byte
	Location string
}

// ApplyCheckIn records the check-in on r. r is left untouched when a
// check-in already exists. An Absent placeholder is reclassified; an
// On Leave row only changes when the check-in is late.
func (r *Record) ApplyCheckIn(ev Event) error {
	if r.CheckIn != nil {
		return ErrAlreadyCheckedIn
	}
	at := ev.At
	r.CheckIn = &at
	r.CheckInLocation = ev.Location
	r.HasCheckInPhoto = len(ev.Photo) > 0
	if r.Status == "" || r.Status == StatusAbsent || CheckInStatus(at) == StatusLate {
		r.Status = CheckInStatus(at)
	}
	return nil
}

// ApplyCheckOut closes the day and reclassifies it.
func (r *Record) ApplyCheckOut(ev Event) error {
	if r.CheckIn == nil {
		return ErrNotCheckedIn
	}
	if r.CheckOut != nil {
		return ErrAlreadyCheckedOut
	}
	at := ev.At
	r.CheckOut = &at
	r.CheckOutLocation = ev.Location
	r.HasCheckOutPhoto = len(ev.Photo) > 0
	r.Status = CheckOutStatus(r.Status, *r.CheckIn, at)
	return nil
}

// ManualEntry is an administrator correction or backfill.
type ManualEntry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	CheckIn    *Clock
	CheckOut   *Clock
	// Status is only honoured when no times are supplied (Absent, On Leave).
	Status Status
	Notes  string
}

type Filter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Status     Status
	Limit      int
	Offset     int
}

type ListResult struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
}
