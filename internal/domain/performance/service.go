package performance

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func normalize(in ReviewInput) (ReviewInput, error) {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Achievements = strings.TrimSpace(in.Achievements)
	in.AreasOfImprovement = strings.TrimSpace(in.AreasOfImprovement)
	in.ReviewerComments = strings.TrimSpace(in.ReviewerComments)
	if in.EmployeeID == "" {
		return in, ErrEmployeeRequired
	}
	if in.ReviewDate.IsZero() {
		return in, ErrReviewDateRequired
	}
	in.ReviewDate = time.Date(in.ReviewDate.Year(), in.ReviewDate.Month(), in.ReviewDate.Day(), 0, 0, 0, 0, time.UTC)
	if err := in.Scores.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// Create stores a new Draft review written by reviewerID.
func (s *Service) Create(ctx context.Context, in ReviewInput, reviewerID string) (Review, error) {
	in, err := normalize(in)
	if err != nil {
		return Review{}, err
	}
	id, err := s.Store.Create(ctx, in, in.Scores.Overall(), reviewerID)
	if err != nil {
		return Review{}, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, in ReviewInput, reviewerID string) (Review, error) {
	in, err := normalize(in)
	if err != nil {
		return Review{}, err
	}
	if err := s.Store.UpdateDraft(ctx, id, in, in.Scores.Overall(), reviewerID); err != nil {
		return Review{}, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Review, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	return s.Store.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) Submit(ctx context.Context, id string) (Review, error) {
	return s.advance(ctx, id, StatusDraft, nil)
}

// Acknowledge is done by the reviewed employee, who may attach comments.
func (s *Service) Acknowledge(ctx context.Context, id, employeeID, comments string) (Review, error) {
	rv, err := s.Store.Get(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if rv.EmployeeID != employeeID {
		return Review{}, ErrNotReviewee
	}
	comments = strings.TrimSpace(comments)
	return s.advance(ctx, id, StatusSubmitted, &comments)
}

func (s *Service) Complete(ctx context.Context, id string) (Review, error) {
	return s.advance(ctx, id, StatusAcknowledged, nil)
}

func (s *Service) advance(ctx context.Context, id string, from Status, comments *string) (Review, error) {
	if err := s.Store.Transition(ctx, id, from, next[from], comments); err != nil {
		return Review{}, err
	}
	return s.Store.Get(ctx, id)
}
