package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrdesk/internal/domain/core"
	"hrdesk/internal/platform/jobs"
)

// SalaryLookup resolves the payroll view of an employee.
type SalaryLookup interface {
	SalaryLookup(ctx context.Context, employeeID string) (core.SalaryInfo, error)
}

// JobQueue runs payslip rendering off the request path, or inline when a
// payslip is requested before the queued render finished. Both record a run.
type JobQueue interface {
	Enqueue(jobType string, run func(context.Context) (any, error)) bool
	RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error)
}

// FileSealer encrypts payslip copies written to disk.
type FileSealer interface {
	Configured() bool
	Encrypt(plain []byte) ([]byte, error)
}

type Service struct {
	Store      StoreAPI
	Employees  SalaryLookup
	Calc       *Calculator
	Jobs       JobQueue
	Company    string
	PayslipDir string
	Crypto     FileSealer
	now        func() time.Time
}

func NewService(store StoreAPI, employees SalaryLookup, calc *Calculator, queue JobQueue) *Service {
	if calc == nil {
		calc = NewCalculator(DefaultRates())
	}
	return &Service{
		Store:     store,
		Employees: employees,
		Calc:      calc,
		Jobs:      queue,
		Company:   core.DefaultCompanyName,
		now:       time.Now,
	}
}

// Calculate previews a payroll without storing anything.
func (s *Service) Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	return s.Calc.Compute(in), nil
}

// PaymentReference is PAY-yyyyMMdd- followed by the first 8 characters of
// a random UUID.
func PaymentReference(at time.Time) string {
	return fmt.Sprintf("PAY-%s-%s", at.Format("20060102"), uuid.NewString()[:8])
}

// Generate computes and stores the payroll for one employee-month, then
// queues the payslip render.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Record, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.Month.IsZero() {
		return Record{}, ErrInvalidMonth
	}
	info, err := s.Employees.SalaryLookup(ctx, req.EmployeeID)
	if err != nil {
		return Record{}, err
	}

	in := req.Input
	if in.BaseSalary.IsZero() {
		in.BaseSalary = info.Salary
	}
	if in.MaritalStatus == "" {
		in.MaritalStatus = MaritalSingle
	}
	res, err := s.Calculate(in)
	if err != nil {
		return Record{}, err
	}

	start, end := MonthBounds(req.Month)
	exists, err := s.Store.Exists(ctx, info.EmployeeID, start)
	if err != nil {
		return Record{}, err
	}
	if exists {
		return Record{}, ErrPayrollExists
	}

	now := s.now()
	rec := Record{
		EmployeeID:       info.EmployeeID,
		EmployeeName:     info.Name,
		Position:         info.Position,
		Department:       info.Department,
		PayPeriodStart:   start,
		PayPeriodEnd:     end,
		Input:            in,
		Overtime:         res.Overtime,
		PublicHoliday:    res.PublicHoliday,
		PublicHolidayOT:  res.PublicHolidayOT,
		Statutory:        res.Statutory,
		TaxDeductions:    res.TaxDeductions,
		NetSalary:        res.NetSalary,
		PaymentDate:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		PaymentStatus:    PaymentStatusGenerated,
		PaymentReference: PaymentReference(now),
	}
	id, err := s.Store.Create(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	if s.Jobs != nil {
		s.Jobs.Enqueue(jobs.JobPayslipRender, s.renderJob(id))
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	return s.Store.List(ctx, filter)
}

// Delete removes a payroll; regenerating a month is delete then generate.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// RenderPayslip draws the payslip, stores it on the record and, when a
// payslip directory is configured, writes a copy there. The returned path
// is empty without a directory.
func (s *Service) RenderPayslip(ctx context.Context, id string) (string, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	pdf, err := RenderPayslip(s.Company, rec)
	if err != nil {
		return "", err
	}
	if err := s.Store.SetPayslip(ctx, id, pdf); err != nil {
		return "", err
	}
	if s.PayslipDir == "" {
		return "", nil
	}
	return s.writePayslipFile(rec, pdf)
}

func (s *Service) writePayslipFile(rec Record, pdf []byte) (string, error) {
	if err := os.MkdirAll(s.PayslipDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.PayslipDir, rec.PaymentReference+".pdf")
	if s.Crypto != nil && s.Crypto.Configured() {
		encrypted, err := s.Crypto.Encrypt(pdf)
		if err != nil {
			return "", err
		}
		filePath += ".enc"
		return filePath, os.WriteFile(filePath, encrypted, 0o600)
	}
	return filePath, os.WriteFile(filePath, pdf, 0o600)
}

// Payslip returns the stored PDF, rendering it first if the background job
// has not run yet.
func (s *Service) Payslip(ctx context.Context, id string) ([]byte, error) {
	pdf, err := s.Store.Payslip(ctx, id)
	if !errors.Is(err, ErrPayslipNotReady) {
		return pdf, err
	}
	render := s.renderJob(id)
	if s.Jobs != nil {
		_, err = s.Jobs.RunNow(ctx, jobs.JobPayslipRender, render)
	} else {
		_, err = render(ctx)
	}
	if err != nil {
		slog.Warn("payslip render failed", "payrollId", id, "err", err)
		return nil, err
	}
	return s.Store.Payslip(ctx, id)
}

func (s *Service) renderJob(id string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		path, err := s.RenderPayslip(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]string{"payrollId": id, "file": path}, nil
	}
}
