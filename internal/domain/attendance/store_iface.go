package attendance

import (
	"context"
	"time"
)

// StoreAPI is the persistence boundary for attendance rows. Conditional
// writes enforce the check-in/check-out state machine in the database.
type StoreAPI interface {
	// Get returns ErrRecordNotFound when id does not exist.
	Get(ctx context.Context, id string) (Record, error)
	// GetByEmployeeAndDate returns ErrRecordNotFound when the day has no row.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)
	// Create returns ErrRecordExists on a duplicate employee and date.
	Create(ctx context.Context, rec Record, checkInPhoto []byte) (string, error)
	// SaveCheckIn only succeeds while no check-in is stored.
	SaveCheckIn(ctx context.Context, rec Record, photo []byte) error
	// SaveCheckOut only succeeds after a check-in and before any check-out.
	SaveCheckOut(ctx context.Context, rec Record, photo []byte) error
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) (ListResult, error)
	Photo(ctx context.Context, id, kind string) ([]byte, error)
}
