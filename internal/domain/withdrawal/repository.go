package withdrawal

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	Save(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*Request, error)
	ListByInvestorID(ctx context.Context, investorID string) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)
	// sum of pending + approved amounts against one allocation
	SumOpenByAllocationID(ctx context.Context, allocationID string) (decimal.Decimal, error)
}
