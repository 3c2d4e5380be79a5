package performance

import "errors"

var (
	ErrReviewNotFound     = errors.New("performance review not found")
	ErrScoreOutOfRange    = errors.New("scores must be between 1 and 5")
	ErrEmployeeRequired   = errors.New("employee is required")
	ErrReviewDateRequired = errors.New("review date is required")
	ErrNotEditable        = errors.New("only draft reviews can be edited")
	ErrInvalidTransition  = errors.New("review is not in the expected status")
	ErrNotReviewee        = errors.New("only the reviewed employee can acknowledge")
)
