package mysql

import (
	"context"
	"errors"
	"time"

	walletDomain "fund-ledger/internal/domain/wallet"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) Create(ctx context.Context, w *walletDomain.Wallet) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WalletRepository) GetByInvestorID(ctx context.Context, investorID string) (*walletDomain.Wallet, error) {
	var out walletDomain.Wallet
	res := r.db.WithContext(ctx).Where("investor_id = ?", investorID).First(&out)
	return &out, res.Error
}

func (r *WalletRepository) GetByInvestorIDForUpdate(ctx context.Context, investorID string) (*walletDomain.Wallet, error) {
	var out walletDomain.Wallet
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("investor_id = ?", investorID).
		First(&out)
	return &out, res.Error
}

// Save writes the balance columns guarded by the previous version, so a writer
// that skipped the row lock cannot silently overwrite a newer balance.
func (r *WalletRepository) Save(ctx context.Context, w *walletDomain.Wallet) error {
	if w.ID == 0 || w.Version == 0 {
		return errors.New("wallet: save requires a persisted, mutated wallet")
	}
	res := r.db.WithContext(ctx).
		Model(&walletDomain.Wallet{}).
		Where("id = ? AND version = ?", w.ID, w.Version-1).
		Updates(map[string]any{
			"available_balance":   w.AvailableBalance,
			"locked_balance":      w.LockedBalance,
			"total_deposited":     w.TotalDeposited,
			"total_withdrawn":     w.TotalWithdrawn,
			"version":             w.Version,
			"last_transaction_at": w.LastTransactionAt,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return walletDomain.ErrVersionConflict
	}
	return nil
}
