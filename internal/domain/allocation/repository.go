package allocation

import "context"

type Repository interface {
	Create(ctx context.Context, a *Allocation) error
	Save(ctx context.Context, a *Allocation) error
	GetByAllocationID(ctx context.Context, allocationID string) (*Allocation, error)
	GetByAllocationIDForUpdate(ctx context.Context, allocationID string) (*Allocation, error)
	// active position of an investor in a plan, locked for update
	GetActiveForUpdate(ctx context.Context, investorID, fundPlanID string) (*Allocation, error)
	ListByInvestorID(ctx context.Context, investorID string) ([]Allocation, error)
}
