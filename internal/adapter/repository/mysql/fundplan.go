package mysql

import (
	"context"

	fundplanDomain "fund-ledger/internal/domain/fundplan"

	"gorm.io/gorm"
)

type FundPlanRepository struct{ db *gorm.DB }

func NewFundPlanRepository(db *gorm.DB) *FundPlanRepository { return &FundPlanRepository{db: db} }

func (r *FundPlanRepository) GetByFundPlanID(ctx context.Context, fundPlanID string) (*fundplanDomain.FundPlan, error) {
	var out fundplanDomain.FundPlan
	res := r.db.WithContext(ctx).Where("fund_plan_id = ?", fundPlanID).First(&out)
	return &out, res.Error
}
