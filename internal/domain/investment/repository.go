package investment

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	Save(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*Request, error)
	ListByInvestorID(ctx context.Context, investorID string) ([]Request, error)
}
