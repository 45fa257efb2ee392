package db

import (
	"fund-ledger/internal/domain/allocation"
	"fund-ledger/internal/domain/audit"
	"fund-ledger/internal/domain/fundplan"
	"fund-ledger/internal/domain/investment"
	"fund-ledger/internal/domain/transaction"
	"fund-ledger/internal/domain/wallet"
	"fund-ledger/internal/domain/withdrawal"

	"gorm.io/gorm"
)

// Models lists every ledger table in creation order.
func Models() []any {
	return []any{
		&fundplan.FundPlan{},
		&wallet.Wallet{},
		&allocation.Allocation{},
		&investment.Request{},
		&withdrawal.Request{},
		&transaction.Transaction{},
		&audit.Entry{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
