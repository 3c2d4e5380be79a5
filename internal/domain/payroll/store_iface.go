package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, rec Record) (string, error)
	Exists(ctx context.Context, employeeID string, periodStart time.Time) (bool, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter Filter) (ListResult, error)
	Delete(ctx context.Context, id string) error
	SetPayslip(ctx context.Context, id string, pdf []byte) error
	Payslip(ctx context.Context, id string) ([]byte, error)
}
