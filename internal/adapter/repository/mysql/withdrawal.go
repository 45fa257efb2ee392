package mysql

import (
	"context"

	withdrawalDomain "fund-ledger/internal/domain/withdrawal"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WithdrawalRepository struct{ db *gorm.DB }

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, req *withdrawalDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *WithdrawalRepository) Save(ctx context.Context, req *withdrawalDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *WithdrawalRepository) GetByRequestID(ctx context.Context, requestID string) (*withdrawalDomain.Request, error) {
	var out withdrawalDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	return &out, res.Error
}

func (r *WithdrawalRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*withdrawalDomain.Request, error) {
	var out withdrawalDomain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	return &out, res.Error
}

func (r *WithdrawalRepository) ListByInvestorID(ctx context.Context, investorID string) ([]withdrawalDomain.Request, error) {
	var out []withdrawalDomain.Request
	res := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status withdrawalDomain.Status) ([]withdrawalDomain.Request, error) {
	var out []withdrawalDomain.Request
	res := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

// Summed in Go: SUM over DECIMAL comes back as float on some drivers.
func (r *WithdrawalRepository) SumOpenByAllocationID(ctx context.Context, allocationID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	res := r.db.WithContext(ctx).
		Model(&withdrawalDomain.Request{}).
		Where("allocation_id = ? AND status IN ?", allocationID,
			[]withdrawalDomain.Status{withdrawalDomain.StatusPending, withdrawalDomain.StatusApproved}).
		Pluck("withdrawal_amount", &amounts)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}
