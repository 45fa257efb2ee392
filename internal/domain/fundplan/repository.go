package fundplan

import "context"

type Repository interface {
	GetByFundPlanID(ctx context.Context, fundPlanID string) (*FundPlan, error)
}
