package leave

import "context"

type StoreAPI interface {
	Create(ctx context.Context, req NewRequest) (string, error)
	Get(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter Filter) (ListResult, error)
	// Decide moves a Pending request to status; ErrNotPending otherwise.
	Decide(ctx context.Context, id string, status Status, approverID string) error
	// DeletePending removes a request only while it is Pending.
	DeletePending(ctx context.Context, id string) error
}
