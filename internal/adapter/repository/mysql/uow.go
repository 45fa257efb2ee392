package mysql

import (
	"context"
	"errors"

	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/uow"
	"fund-ledger/internal/domain/wallet"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// translate turns InnoDB lock contention into a retryable Busy error.
func translate(err error) error {
	var me *driver.MySQLError
	if errors.As(err, &me) && (me.Number == erLockWaitTimeout || me.Number == erLockDeadlock) {
		return ledgererr.Busy("database lock contention (%d), retry", me.Number)
	}
	return err
}

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Wallets:      &WalletRepository{db: tx},
		Allocations:  &AllocationRepository{db: tx},
		Investments:  &InvestmentRepository{db: tx},
		Withdrawals:  &WithdrawalRepository{db: tx},
		Transactions: &TransactionRepository{db: tx},
		FundPlans:    &FundPlanRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return translate(u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	}))
}

func (u *GormUoW) WithinWalletTx(ctx context.Context, investorID string, fn func(r uow.Repos, w *wallet.Wallet) error) error {
	return translate(u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the wallet row up-front so balance read-modify-write cannot interleave
		w, err := r.Wallets.GetByInvestorIDForUpdate(ctx, investorID)
		if err != nil {
			return err
		}
		return fn(r, w)
	}))
}
