package leave

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	requests map[string]Request
	seq      int
}

func (f *fakeStore) Create(_ context.Context, req NewRequest) (string, error) {
	f.seq++
	id := fmt.Sprintf("leave-%d", f.seq)
	days, _ := CalculateDays(req.StartDate, req.EndDate)
	f.requests[id] = Request{
		ID: id, EmployeeID: req.EmployeeID, Type: req.Type, StartDate: req.StartDate, EndDate: req.EndDate,
		Days: days, Reason: req.Reason, Status: StatusPending,
	}
	return id, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	return req, nil
}

func (f *fakeStore) List(_ context.Context, filter Filter) (ListResult, error) {
	out := ListResult{Items: []Request{}}
	for _, r := range f.requests {
		if filter.EmployeeID == "" || r.EmployeeID == filter.EmployeeID {
			out.Items = append(out.Items, r)
		}
	}
	out.Total = len(out.Items)
	return out, nil
}

func (f *fakeStore) Decide(_ context.Context, id string, status Status, approverID string) error {
	req, ok := f.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != StatusPending {
		return ErrNotPending
	}
	now := time.Now()
	req.Status, req.ApprovedBy, req.ApprovedDate = status, approverID, &now
	f.requests[id] = req
	return nil
}

func (f *fakeStore) DeletePending(_ context.Context, id string) error {
	if f.requests[id].Status != StatusPending {
		return ErrNotPending
	}
	delete(f.requests, id)
	return nil
}

type markCall struct {
	employeeID string
	start, end time.Time
	note       string
}

type fakeMarker struct {
	calls []markCall
	err   error
}

func (m *fakeMarker) MarkOnLeave(_ context.Context, employeeID string, start, end time.Time, note string) (int, error) {
	m.calls = append(m.calls, markCall{employeeID, start, end, note})
	days, _ := CalculateDays(start, end)
	return days, m.err
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func newRequest() NewRequest {
	return NewRequest{EmployeeID: "e1", Type: "Annual Leave", StartDate: day(6), EndDate: day(8), Reason: "Family trip"}
}

func TestCalculateDays(t *testing.T) {
	days, err := CalculateDays(day(10), day(10))
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	days, err = CalculateDays(day(10), day(12).Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	_, err = CalculateDays(day(10), day(9))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRequestValidation(t *testing.T) {
	svc := NewService(&fakeStore{requests: map[string]Request{}}, nil)
	ctx := context.Background()

	req := newRequest()
	req.Reason = "   "
	_, err := svc.Request(ctx, req)
	assert.ErrorIs(t, err, ErrReasonRequired)

	req = newRequest()
	req.Type = "Holiday"
	_, err = svc.Request(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidType)

	req = newRequest()
	req.EndDate = day(5)
	_, err = svc.Request(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidRange)

	created, err := svc.Request(ctx, newRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, 3, created.Days)
}

func TestApproveMarksAttendance(t *testing.T) {
	marker := &fakeMarker{}
	svc := NewService(&fakeStore{requests: map[string]Request{}}, marker)
	ctx := context.Background()

	req, err := svc.Request(ctx, newRequest())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, req.ID, "hr-user")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "hr-user", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedDate)
	require.Len(t, marker.calls, 1)
	assert.Equal(t, markCall{"e1", day(6), day(8), "Approved leave"}, marker.calls[0])

	_, err = svc.Reject(ctx, req.ID, "hr-user")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = svc.Approve(ctx, "missing", "hr-user")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestApproveSurvivesAttendanceFailure(t *testing.T) {
	marker := &fakeMarker{err: errors.New("db down")}
	svc := NewService(&fakeStore{requests: map[string]Request{}}, marker)

	req, err := svc.Request(context.Background(), newRequest())
	require.NoError(t, err)
	approved, err := svc.Approve(context.Background(), req.ID, "hr-user")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
}

func TestRejectDoesNotMarkAttendance(t *testing.T) {
	marker := &fakeMarker{}
	svc := NewService(&fakeStore{requests: map[string]Request{}}, marker)

	req, err := svc.Request(context.Background(), newRequest())
	require.NoError(t, err)
	rejected, err := svc.Reject(context.Background(), req.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Empty(t, marker.calls)
}

func TestDelete(t *testing.T) {
	store := &fakeStore{requests: map[string]Request{}}
	svc := NewService(store, nil)
	ctx := context.Background()

	req, err := svc.Request(ctx, newRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, req.ID, "e2", false), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, req.ID, "e1", false))
	assert.Empty(t, store.requests)

	req, err = svc.Request(ctx, newRequest())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, req.ID, "hr")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, req.ID, "e1", false), ErrNotPending)
	assert.ErrorIs(t, svc.Delete(ctx, "missing", "e1", true), ErrRequestNotFound)
}
