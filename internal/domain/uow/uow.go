package uow

import (
	"context"

	"fund-ledger/internal/domain/allocation"
	"fund-ledger/internal/domain/fundplan"
	"fund-ledger/internal/domain/investment"
	"fund-ledger/internal/domain/transaction"
	"fund-ledger/internal/domain/wallet"
	"fund-ledger/internal/domain/withdrawal"
)

// Repos are bound to one database transaction.
type Repos struct {
	Wallets      wallet.Repository
	Allocations  allocation.Repository
	Investments  investment.Repository
	Withdrawals  withdrawal.Repository
	Transactions transaction.Repository
	FundPlans    fundplan.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the investor's wallet row first, then pass it in
	WithinWalletTx(ctx context.Context, investorID string, fn func(r Repos, w *wallet.Wallet) error) error
}
