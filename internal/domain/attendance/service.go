package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Locator resolves a human-readable location for the current request.
// It never fails; errors degrade to a placeholder string.
type Locator interface {
	Lookup(ctx context.Context) string
}

// Sealer encrypts photos at rest.
type Sealer interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type Service struct {
	Store   StoreAPI
	Locator Locator
	Crypto  Sealer
	Now     func() time.Time
}

func NewService(store StoreAPI, locator Locator, crypto Sealer, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		Store:   store,
		Locator: locator,
		Crypto:  crypto,
		Now:     func() time.Time { return time.Now().In(loc) },
	}
}

func (s *Service) event(ctx context.Context, now time.Time, photo []byte) (Event, []byte, error) {
	ev := Event{At: ClockOf(now), Photo: photo}
	if s.Locator != nil {
		ev.Location = s.Locator.Lookup(ctx)
	}
	sealed := photo
	if len(photo) > 0 && s.Crypto != nil {
		var err error
		sealed, err = s.Crypto.Encrypt(photo)
		if err != nil {
			return Event{}, nil, fmt.Errorf("failed to seal photo: %w", err)
		}
	}
	return ev, sealed, nil
}

// CheckIn opens today's record for employeeID. A second check-in on the
// same date is rejected and the stored row is not modified.
func (s *Service) CheckIn(ctx context.Context, employeeID string, photo []byte) (Record, error) {
	now := s.Now()
	existing, err := s.Store.GetByEmployeeAndDate(ctx, employeeID, now)
	found := err == nil
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return Record{}, err
	}
	if found && existing.CheckIn != nil {
		return Record{}, ErrAlreadyCheckedIn
	}

	ev, sealed, err := s.event(ctx, now, photo)
	if err != nil {
		return Record{}, err
	}

	rec := existing
	if !found {
		rec = Record{EmployeeID: employeeID, Date: now}
	}
	if err := rec.ApplyCheckIn(ev); err != nil {
		return Record{}, err
	}

	if !found {
		id, err := s.Store.Create(ctx, rec, sealed)
		if errors.Is(err, ErrRecordExists) {
			return Record{}, ErrAlreadyCheckedIn
		}
		if err != nil {
			return Record{}, err
		}
		return s.Store.Get(ctx, id)
	}
	if err := s.Store.SaveCheckIn(ctx, rec, sealed); err != nil {
		return Record{}, err
	}
	return s.Store.Get(ctx, rec.ID)
}

// CheckOut closes today's record for employeeID.
func (s *Service) CheckOut(ctx context.Context, employeeID string, photo []byte) (Record, error) {
	now := s.Now()
	rec, err := s.Store.GetByEmployeeAndDate(ctx, employeeID, now)
	if errors.Is(err, ErrRecordNotFound) {
		return Record{}, ErrNotCheckedIn
	}
	if err != nil {
		return Record{}, err
	}
	if rec.CheckIn == nil {
		return Record{}, ErrNotCheckedIn
	}
	if rec.CheckOut != nil {
		return Record{}, ErrAlreadyCheckedOut
	}

	ev, sealed, err := s.event(ctx, now, photo)
	if err != nil {
		return Record{}, err
	}
	if err := rec.ApplyCheckOut(ev); err != nil {
		return Record{}, err
	}
	if err := s.Store.SaveCheckOut(ctx, rec, sealed); err != nil {
		return Record{}, err
	}
	return s.Store.Get(ctx, rec.ID)
}

// Today returns the caller's record for the current date.
func (s *Service) Today(ctx context.Context, employeeID string) (Record, error) {
	return s.Store.GetByEmployeeAndDate(ctx, employeeID, s.Now())
}

// SaveManual creates or replaces a record from administrator input. With both
// times present the status comes from ManualStatus; without times only
// Absent or On Leave may be set.
func (s *Service) SaveManual(ctx context.Context, entry ManualEntry) (Record, error) {
	rec := Record{
		ID:         entry.ID,
		EmployeeID: entry.EmployeeID,
		Date:       entry.Date,
		CheckIn:    entry.CheckIn,
		CheckOut:   entry.CheckOut,
		Notes:      entry.Notes,
	}
	switch {
	case entry.CheckIn != nil && entry.CheckOut != nil:
		rec.Status = ManualStatus(*entry.CheckIn, *entry.CheckOut)
	case entry.CheckIn != nil:
		rec.Status = CheckInStatus(*entry.CheckIn)
	case entry.CheckOut != nil:
		return Record{}, ErrNotCheckedIn
	case entry.Status == StatusAbsent || entry.Status == StatusOnLeave:
		rec.Status = entry.Status
	default:
		return Record{}, ErrManualStatusNeeded
	}

	if rec.ID == "" {
		id, err := s.Store.Create(ctx, rec, nil)
		if err != nil {
			return Record{}, err
		}
		return s.Store.Get(ctx, id)
	}

	current, err := s.Store.Get(ctx, rec.ID)
	if err != nil {
		return Record{}, err
	}
	if rec.EmployeeID == "" {
		rec.EmployeeID = current.EmployeeID
	}
	if rec.Date.IsZero() {
		rec.Date = current.Date
	}
	if err := s.Store.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return s.Store.Get(ctx, rec.ID)
}

// MarkOnLeave creates On Leave rows carrying note for each day in [start, end]
// that has no record yet and returns how many were created.
func (s *Service) MarkOnLeave(ctx context.Context, employeeID string, start, end time.Time, note string) (int, error) {
	created := 0
	for day := dateOnly(start); !day.After(dateOnly(end)); day = day.AddDate(0, 0, 1) {
		_, err := s.Store.Create(ctx, Record{EmployeeID: employeeID, Date: day, Status: StatusOnLeave, Notes: note}, nil)
		if errors.Is(err, ErrRecordExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	return s.Store.List(ctx, filter)
}

// Photo returns the decrypted check-in or check-out photo.
func (s *Service) Photo(ctx context.Context, id, kind string) ([]byte, error) {
	sealed, err := s.Store.Photo(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if s.Crypto == nil {
		return sealed, nil
	}
	return s.Crypto.Decrypt(sealed)
}

// MonthlyReport loads every record of the month containing month.
func (s *Service) MonthlyReport(ctx context.Context, month time.Time) (Report, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	res, err := s.Store.List(ctx, Filter{From: from, To: to})
	if err != nil {
		return Report{}, err
	}
	return BuildReport(from, res.Items), nil
}
