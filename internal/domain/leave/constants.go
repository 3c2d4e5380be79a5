package leave

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

var Types = []string{
	"Annual Leave",
	"Sick Leave",
	"Emergency Leave",
	"Unpaid Leave",
	"Maternity Leave",
	"Paternity Leave",
}

const attendanceNote = "Approved leave"
