package auth

import "context"

type StoreAPI interface {
	FindUserByEmail(ctx context.Context, email string) (AuthUser, error)
	GetUser(ctx context.Context, userID string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdateUserPassword(ctx context.Context, userID, hash string) error
}
