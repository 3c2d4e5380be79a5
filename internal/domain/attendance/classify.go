package attendance

// CheckInStatus marks anything after WorkStart as late.
func CheckInStatus(in Clock) Status {
	if in > WorkStart {
		return StatusLate
	}
	return StatusPresent
}

// CheckOutStatus settles the status of a live check-out. A short day is a
// half day even when the check-in was late; otherwise Late is kept.
func CheckOutStatus(current Status, in, out Clock) Status {
	if out.Sub(in) < FullWorkDay {
		return StatusHalfDay
	}
	if current == StatusLate {
		return StatusLate
	}
	if out > WorkEnd {
		return StatusOT
	}
	return StatusPresent
}

// ManualStatus classifies an administrator-entered pair of times. Lateness
// is tested first here, unlike CheckOutStatus.
func ManualStatus(in, out Clock) Status {
	switch {
	case in > WorkStart:
		return StatusLate
	case out.Sub(in) < FullWorkDay:
		return StatusHalfDay
	case out > WorkEnd:
		return StatusOT
	default:
		return StatusPresent
	}
}
