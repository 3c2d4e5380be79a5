package core

import "context"

type StoreAPI interface {
	// Create inserts the user and employee rows in one transaction.
	Create(ctx context.Context, in EmployeeInput, passwordHash string) (string, error)
	Get(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context, filter Filter) (ListResult, error)
	// Update replaces the password only when passwordHash is non-empty.
	Update(ctx context.Context, id string, in EmployeeInput, passwordHash string) error
	// Delete removes the user; the employee row and its history cascade.
	Delete(ctx context.Context, id string) error
	SetProfileImage(ctx context.Context, id string, image []byte) error
	ProfileImage(ctx context.Context, id string) ([]byte, error)
}
