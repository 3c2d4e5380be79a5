package performance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Scores struct {
	Productivity  int `json:"productivity"`
	Quality       int `json:"quality"`
	Initiative    int `json:"initiative"`
	Teamwork      int `json:"teamwork"`
	Communication int `json:"communication"`
}

func (s Scores) values() []int {
	return []int{s.Productivity, s.Quality, s.Initiative, s.Teamwork, s.Communication}
}

func (s Scores) Validate() error {
	for _, v := range s.values() {
		if v < MinScore || v > MaxScore {
			return ErrScoreOutOfRange
		}
	}
	return nil
}

// Overall is the mean of the five scores, rounded half-to-even to 2 dp.
func (s Scores) Overall() decimal.Decimal {
	sum := 0
	vals := s.values()
	for _, v := range vals {
		sum += v
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(vals)))).RoundBank(2)
}

type Review struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employeeId"`
	EmployeeName       string          `json:"employeeName"`
	ReviewDate         time.Time       `json:"reviewDate"`
	Scores             Scores          `json:"scores"`
	Overall            decimal.Decimal `json:"overallScore"`
	Achievements       string          `json:"achievements"`
	AreasOfImprovement string          `json:"areasOfImprovement"`
	ReviewerComments   string          `json:"reviewerComments"`
	EmployeeComments   string          `json:"employeeComments"`
	ReviewedBy         string          `json:"reviewedBy,omitempty"`
	ReviewedByName     string          `json:"reviewedByName,omitempty"`
	Status             Status          `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type ReviewInput struct {
	EmployeeID         string    `json:"employeeId"`
	ReviewDate         time.Time `json:"reviewDate"`
	Scores             Scores    `json:"scores"`
	Achievements       string    `json:"achievements"`
	AreasOfImprovement string    `json:"areasOfImprovement"`
	ReviewerComments   string    `json:"reviewerComments"`
}

type Filter struct {
	EmployeeID string
	Status     Status
	Limit      int
	Offset     int
}

type ListResult struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}
