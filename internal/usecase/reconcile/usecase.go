package reconcile

import (
	"context"
	"errors"

	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/uow"
	"fund-ledger/internal/usecase/emitter"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report compares a wallet's running totals with its transaction log.
type Report struct {
	InvestorID string          `json:"investor_id"`
	Expected   decimal.Decimal `json:"expected"` // total_deposited - total_withdrawn
	Actual     decimal.Decimal `json:"actual"`   // signed sum of completed transactions
	Drift      decimal.Decimal `json:"drift"`
	Balanced   bool            `json:"balanced"`
	Count      int             `json:"transaction_count"`
}

type Usecase struct {
	uow    uow.UnitOfWork
	events *emitter.Emitter
}

func NewUsecase(tx uow.UnitOfWork, events *emitter.Emitter) *Usecase {
	return &Usecase{uow: tx, events: events}
}

// Wallet reconciles one wallet. Drift is reported as an invariant violation
// to operators; the report itself is still returned.
func (u *Usecase) Wallet(ctx context.Context, investorID string) (*Report, error) {
	rep := &Report{InvestorID: investorID}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Wallets.GetByInvestorID(ctx, investorID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledgererr.NotFound("wallet", investorID)
		}
		if err != nil {
			return err
		}
		txs, err := r.Transactions.ListByInvestorID(ctx, investorID)
		if err != nil {
			return err
		}
		rep.Expected = w.TotalDeposited.Sub(w.TotalWithdrawn)
		rep.Actual = decimal.Zero
		for i := range txs {
			rep.Actual = rep.Actual.Add(txs[i].SignedAmount())
		}
		rep.Count = len(txs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep.Drift = rep.Expected.Sub(rep.Actual)
	rep.Balanced = rep.Drift.IsZero()
	if !rep.Balanced {
		u.events.Alert(ctx, "wallet.reconcile", investorID, ledgererr.Invariant(
			"wallet totals %s disagree with transaction log %s (drift %s)",
			rep.Expected.StringFixed(2), rep.Actual.StringFixed(2), rep.Drift.StringFixed(2)))
	}
	return rep, nil
}
