package leave

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// AttendanceMarker pre-creates On Leave attendance rows.
type AttendanceMarker interface {
	MarkOnLeave(ctx context.Context, employeeID string, start, end time.Time, note string) (int, error)
}

type Service struct {
	Store      StoreAPI
	Attendance AttendanceMarker
}

func NewService(store StoreAPI, attendance AttendanceMarker) *Service {
	return &Service{Store: store, Attendance: attendance}
}

func (s *Service) Request(ctx context.Context, req NewRequest) (Request, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	req.Type = strings.TrimSpace(req.Type)
	if req.Reason == "" {
		return Request{}, ErrReasonRequired
	}
	if !ValidType(req.Type) {
		return Request{}, ErrInvalidType
	}
	if _, err := CalculateDays(req.StartDate, req.EndDate); err != nil {
		return Request{}, err
	}
	req.StartDate, req.EndDate = dateOnly(req.StartDate), dateOnly(req.EndDate)

	id, err := s.Store.Create(ctx, req)
	if err != nil {
		return Request{}, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	return s.Store.List(ctx, filter)
}

// Approve marks a pending request approved and fills the leave days in
// attendance. A failure to mark attendance is logged, not returned; the
// approval stands.
func (s *Service) Approve(ctx context.Context, id, approverID string) (Request, error) {
	if err := s.Store.Decide(ctx, id, StatusApproved, approverID); err != nil {
		return Request{}, err
	}
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if s.Attendance != nil {
		created, err := s.Attendance.MarkOnLeave(ctx, req.EmployeeID, req.StartDate, req.EndDate, attendanceNote)
		if err != nil {
			slog.Warn("mark leave attendance failed", "leaveId", id, "employeeId", req.EmployeeID, "err", err)
		} else {
			slog.Debug("leave attendance marked", "leaveId", id, "days", created)
		}
	}
	return req, nil
}

func (s *Service) Reject(ctx context.Context, id, approverID string) (Request, error) {
	if err := s.Store.Decide(ctx, id, StatusRejected, approverID); err != nil {
		return Request{}, err
	}
	return s.Store.Get(ctx, id)
}

// Delete withdraws a pending request. Unless the caller may approve leave,
// only the requesting employee can withdraw it.
func (s *Service) Delete(ctx context.Context, id, callerEmployeeID string, canApprove bool) error {
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canApprove && req.EmployeeID != callerEmployeeID {
		return ErrNotOwner
	}
	if req.Status != StatusPending {
		return ErrNotPending
	}
	return s.Store.DeletePending(ctx, id)
}
