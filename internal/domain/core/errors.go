package core

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrNameRequired      = errors.New("name is required")
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidRole       = errors.New("invalid role")
	ErrNegativeSalary    = errors.New("salary cannot be negative")
	ErrPasswordRequired  = errors.New("password must be at least 8 characters")
	ErrProfileImageEmpty = errors.New("profile image is empty")
)
