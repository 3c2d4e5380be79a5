package performance

import (
	"context"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	Create(ctx context.Context, in ReviewInput, overall decimal.Decimal, reviewerID string) (string, error)
	Get(ctx context.Context, id string) (Review, error)
	List(ctx context.Context, filter Filter) (ListResult, error)
	UpdateDraft(ctx context.Context, id string, in ReviewInput, overall decimal.Decimal, reviewerID string) error
	Transition(ctx context.Context, id string, from, to Status, employeeComments *string) error
	Delete(ctx context.Context, id string) error
}
