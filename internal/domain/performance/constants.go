package performance

type Status string

const (
	StatusDraft        Status = "Draft"
	StatusSubmitted    Status = "Submitted"
	StatusAcknowledged Status = "Acknowledged"
	StatusCompleted    Status = "Completed"
)

const (
	MinScore = 1
	MaxScore = 5
)

// next lists the single forward transition allowed from each status.
var next = map[Status]Status{
	StatusDraft:        StatusSubmitted,
	StatusSubmitted:    StatusAcknowledged,
	StatusAcknowledged: StatusCompleted,
}
