package core

import (
	"context"
	"net/mail"
	"strings"
	"time"

	tokens "hrdesk/internal/auth"
	"hrdesk/internal/domain/auth"
)

const minPasswordLength = 8

type Service struct {
	Store       StoreAPI
	CompanyName string
}

func NewService(store StoreAPI, companyName string) *Service {
	if companyName == "" {
		companyName = DefaultCompanyName
	}
	return &Service{Store: store, CompanyName: companyName}
}

func normalize(in EmployeeInput) EmployeeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Department = strings.TrimSpace(in.Department)
	in.Position = strings.TrimSpace(in.Position)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	in.Address = strings.TrimSpace(in.Address)
	if in.Role == "" {
		in.Role = auth.RoleEmployee
	}
	if in.JoinDate.IsZero() {
		now := time.Now()
		in.JoinDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return in
}

func validate(in EmployeeInput) error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.Email == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrEmailRequired
	}
	if !auth.ValidRole(in.Role) {
		return ErrInvalidRole
	}
	if in.Salary.IsNegative() {
		return ErrNegativeSalary
	}
	return nil
}

// Create registers the login account and the employee record together.
func (s *Service) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Employee{}, err
	}
	if len(in.Password) < minPasswordLength {
		return Employee{}, ErrPasswordRequired
	}
	hash, err := tokens.HashPassword(in.Password)
	if err != nil {
		return Employee{}, err
	}
	id, err := s.Store.Create(ctx, in, hash)
	if err != nil {
		return Employee{}, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	return s.Store.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	return s.Store.List(ctx, filter)
}

// Update replaces the editable fields. An empty password keeps the old one.
func (s *Service) Update(ctx context.Context, id string, in EmployeeInput) (Employee, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Employee{}, err
	}
	hash := ""
	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return Employee{}, ErrPasswordRequired
		}
		var err error
		if hash, err = tokens.HashPassword(in.Password); err != nil {
			return Employee{}, err
		}
	}
	if err := s.Store.Update(ctx, id, in, hash); err != nil {
		return Employee{}, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// SalaryLookup is the typed view payroll uses to price a month.
func (s *Service) SalaryLookup(ctx context.Context, id string) (SalaryInfo, error) {
	emp, err := s.Store.Get(ctx, id)
	if err != nil {
		return SalaryInfo{}, err
	}
	return SalaryInfo{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Position:   emp.Position,
		Department: emp.Department,
		Salary:     emp.Salary,
	}, nil
}

func (s *Service) SetProfileImage(ctx context.Context, id string, image []byte) error {
	if len(image) == 0 {
		return ErrProfileImageEmpty
	}
	return s.Store.SetProfileImage(ctx, id, image)
}

func (s *Service) ProfileImage(ctx context.Context, id string) ([]byte, error) {
	return s.Store.ProfileImage(ctx, id)
}

// IDCard renders the employee's badge as a PDF.
func (s *Service) IDCard(ctx context.Context, id string) ([]byte, error) {
	emp, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	image, err := s.Store.ProfileImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderIDCard(s.CompanyName, emp, image)
}
