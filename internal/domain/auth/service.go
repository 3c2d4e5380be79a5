package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tokens "hrdesk/internal/auth"
)

const MinPasswordLength = 8

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      AuthUser  `json:"user"`
}

// Login verifies the credentials and issues a signed access token. Unknown
// emails and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := tokens.CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	expires := time.Now().Add(s.TokenTTL)
	token, err := tokens.GenerateToken(s.Secret, tokens.Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		RoleName:   user.Role,
	}, s.TokenTTL)
	if err != nil {
		return Session{}, err
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("last login update failed", "userId", user.ID, "err", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (AuthUser, error) {
	return s.Store.GetUser(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := tokens.CheckPassword(user.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}
	hash, err := tokens.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdateUserPassword(ctx, userID, hash)
}
