package mysql

import (
	"context"

	transactionDomain "fund-ledger/internal/domain/transaction"

	"gorm.io/gorm"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create is the only write path; transactions are never updated.
func (r *TransactionRepository) Create(ctx context.Context, t *transactionDomain.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByPaymentReference(ctx context.Context, ref string) (*transactionDomain.Transaction, error) {
	var out transactionDomain.Transaction
	res := r.db.WithContext(ctx).Where("payment_reference = ?", ref).First(&out)
	return &out, res.Error
}

func (r *TransactionRepository) ListByInvestorID(ctx context.Context, investorID string) ([]transactionDomain.Transaction, error) {
	var out []transactionDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("transaction_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}
