package mysql

import (
	"context"

	investmentDomain "fund-ledger/internal/domain/investment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvestmentRepository struct{ db *gorm.DB }

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, req *investmentDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *InvestmentRepository) Save(ctx context.Context, req *investmentDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *InvestmentRepository) GetByRequestID(ctx context.Context, requestID string) (*investmentDomain.Request, error) {
	var out investmentDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	return &out, res.Error
}

func (r *InvestmentRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*investmentDomain.Request, error) {
	var out investmentDomain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	return &out, res.Error
}

func (r *InvestmentRepository) ListByInvestorID(ctx context.Context, investorID string) ([]investmentDomain.Request, error) {
	var out []investmentDomain.Request
	res := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
