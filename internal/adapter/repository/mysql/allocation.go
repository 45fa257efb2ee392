package mysql

import (
	"context"

	allocationDomain "fund-ledger/internal/domain/allocation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AllocationRepository struct{ db *gorm.DB }

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) Create(ctx context.Context, a *allocationDomain.Allocation) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AllocationRepository) Save(ctx context.Context, a *allocationDomain.Allocation) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AllocationRepository) GetByAllocationID(ctx context.Context, allocationID string) (*allocationDomain.Allocation, error) {
	var out allocationDomain.Allocation
	res := r.db.WithContext(ctx).Where("allocation_id = ?", allocationID).First(&out)
	return &out, res.Error
}

func (r *AllocationRepository) GetByAllocationIDForUpdate(ctx context.Context, allocationID string) (*allocationDomain.Allocation, error) {
	var out allocationDomain.Allocation
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("allocation_id = ?", allocationID).
		First(&out)
	return &out, res.Error
}

func (r *AllocationRepository) GetActiveForUpdate(ctx context.Context, investorID, fundPlanID string) (*allocationDomain.Allocation, error) {
	var out allocationDomain.Allocation
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("investor_id = ? AND fund_plan_id = ? AND status = ?", investorID, fundPlanID, allocationDomain.StatusActive).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *AllocationRepository) ListByInvestorID(ctx context.Context, investorID string) ([]allocationDomain.Allocation, error) {
	var out []allocationDomain.Allocation
	res := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
