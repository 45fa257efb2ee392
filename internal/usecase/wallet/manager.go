// Package wallet is the wallet balance manager: every balance mutation runs
// here under the per-investor lock and inside a database transaction holding
// the wallet row.
package wallet

import (
	"context"
	"errors"
	"time"

	"fund-ledger/internal/domain/actor"
	"fund-ledger/internal/domain/allocation"
	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/transaction"
	"fund-ledger/internal/domain/uow"
	walletDomain "fund-ledger/internal/domain/wallet"
	"fund-ledger/internal/usecase/emitter"
	"fund-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// Recorder receives one observation per serialized wallet operation.
type Recorder interface {
	Observe(op string, elapsed time.Duration, err error)
}

type Option func(*Manager)

func WithRecorder(r Recorder) Option { return func(m *Manager) { m.rec = r } }

type Manager struct {
	uow    uow.UnitOfWork
	locker uow.WalletLocker
	events *emitter.Emitter
	log    *zap.Logger
	rec    Recorder
}

func NewManager(tx uow.UnitOfWork, locker uow.WalletLocker, events *emitter.Emitter, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{uow: tx, locker: locker, events: events, log: log}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Within runs fn with the investor's wallet serialized: distributed lock
// first, then a transaction holding the wallet row. Errors come back in the
// ledgererr taxonomy; invariant violations are alerted once fn's transaction
// has rolled back and the lock is released.
func (m *Manager) Within(ctx context.Context, op, investorID string, fn func(r uow.Repos, w *walletDomain.Wallet) error) error {
	start := time.Now()
	err := m.locker.WithWalletLock(ctx, investorID, func(ctx context.Context) error {
		loaded := false
		err := m.uow.WithinWalletTx(ctx, investorID, func(r uow.Repos, w *walletDomain.Wallet) error {
			loaded = true
			return fn(r, w)
		})
		if !loaded && errors.Is(err, gorm.ErrRecordNotFound) {
			return ledgererr.NotFound("wallet", investorID)
		}
		return err
	})
	err = m.classify(ctx, op, investorID, err)
	if m.rec != nil {
		m.rec.Observe(op, time.Since(start), err)
	}
	return err
}

func (m *Manager) classify(ctx context.Context, op, investorID string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, walletDomain.ErrVersionConflict):
		return ledgererr.Busy("wallet %s changed concurrently, retry", investorID)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ledgererr.Busy("wallet %s: %v", investorID, err)
	case errors.Is(err, ledgererr.ErrInvariantViolation):
		m.events.Alert(ctx, op, investorID, err)
	}
	return err
}

// mutate applies one balance transition and persists it.
func (m *Manager) mutate(ctx context.Context, op, investorID string, apply func(w *walletDomain.Wallet) error) (*walletDomain.Wallet, error) {
	var out walletDomain.Wallet
	err := m.Within(ctx, op, investorID, func(r uow.Repos, w *walletDomain.Wallet) error {
		if err := apply(w); err != nil {
			return err
		}
		if err := w.CheckInvariant(); err != nil {
			return err
		}
		if err := r.Wallets.Save(ctx, w); err != nil {
			return err
		}
		out = *w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Manager) Lock(ctx context.Context, investorID string, amount decimal.Decimal) (*walletDomain.Wallet, error) {
	return m.mutate(ctx, "wallet.lock", investorID, func(w *walletDomain.Wallet) error { return w.Lock(amount) })
}

func (m *Manager) Unlock(ctx context.Context, investorID string, amount decimal.Decimal) (*walletDomain.Wallet, error) {
	return m.mutate(ctx, "wallet.unlock", investorID, func(w *walletDomain.Wallet) error { return w.Unlock(amount) })
}

// Debit consumes locked funds.
func (m *Manager) Debit(ctx context.Context, investorID string, amount decimal.Decimal) (*walletDomain.Wallet, error) {
	return m.mutate(ctx, "wallet.debit", investorID, func(w *walletDomain.Wallet) error { return w.Debit(amount) })
}

// Credit moves money into available and appends the matching deposit or
// redemption transaction in the same database transaction, so the lifetime
// totals never drift from the log. A payment reference already booked for
// the same investor and type is a replay: the wallet is returned uncredited.
func (m *Manager) Credit(ctx context.Context, in CreditInput) (*walletDomain.Wallet, error) {
	out, _, err := m.credit(ctx, "wallet.credit", in)
	return out, err
}

func (m *Manager) credit(ctx context.Context, op string, in CreditInput) (*walletDomain.Wallet, bool, error) {
	tx, err := in.entry()
	if err != nil {
		return nil, false, err
	}

	var (
		out    walletDomain.Wallet
		replay bool
	)
	err = m.Within(ctx, op, in.InvestorID, func(r uow.Repos, w *walletDomain.Wallet) error {
		prev, err := r.Transactions.GetByPaymentReference(ctx, in.PaymentReference)
		switch {
		case err == nil:
			if prev.InvestorID != in.InvestorID || prev.TransactionType != tx.TransactionType {
				return ledgererr.Validation("payment_reference", "payment reference %s is already used", in.PaymentReference)
			}
			replay = true
			out = *w
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := w.Credit(in.Kind, in.Amount); err != nil {
			return err
		}
		if err := r.Wallets.Save(ctx, w); err != nil {
			return err
		}
		if err := r.Transactions.Create(ctx, tx); err != nil {
			return err
		}
		out = *w
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, replay, nil
}

// Deposit credits external money and records it as a deposit transaction.
// Replaying a payment reference returns the wallet without crediting again.
func (m *Manager) Deposit(ctx context.Context, act actor.Actor, in DepositInput) (*walletDomain.Wallet, error) {
	if in.InvestorID == "" {
		return nil, ledgererr.Validation("investor_id", "investor_id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, ledgererr.Validation("amount", "amount must be greater than zero")
	}
	if in.PaymentReference == "" {
		in.PaymentReference = "DEPOSIT_" + id.NewID32()
	}
	if err := m.ensureWallet(ctx, in.InvestorID); err != nil {
		return nil, err
	}

	out, replay, err := m.credit(ctx, "wallet.deposit", CreditInput{
		InvestorID:       in.InvestorID,
		Kind:             walletDomain.CreditDeposit,
		Amount:           in.Amount,
		PaymentReference: in.PaymentReference,
		Notes:            in.Notes,
	})
	if err != nil {
		return nil, err
	}
	if replay {
		m.log.Info("deposit replayed", zap.String("investor_id", in.InvestorID),
			zap.String("payment_reference", in.PaymentReference))
		return out, nil
	}

	m.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "wallet.deposit",
		EntityType: "wallet",
		EntityID:   in.InvestorID,
		InvestorID: in.InvestorID,
		Amount:     emitter.Amount(in.Amount),
		Details:    in.PaymentReference,
		Notify: &emitter.Notification{
			UserID:   in.InvestorID,
			Title:    "Deposit received",
			Message:  "A deposit of " + in.Amount.StringFixed(2) + " was credited to your wallet.",
			Category: "wallet",
		},
	})
	return out, nil
}

// ensureWallet creates the investor's wallet on first deposit. A concurrent
// creator losing the unique index race finds the winner's row.
func (m *Manager) ensureWallet(ctx context.Context, investorID string) error {
	err := m.uow.WithinTx(ctx, func(r uow.Repos) error {
		_, err := r.Wallets.GetByInvestorID(ctx, investorID)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.Wallets.Create(ctx, walletDomain.New(investorID))
	})
	if err == nil {
		return nil
	}
	if _, gerr := m.GetWallet(ctx, investorID); gerr == nil {
		return nil
	}
	return err
}

func (m *Manager) GetWallet(ctx context.Context, investorID string) (*walletDomain.Wallet, error) {
	var out *walletDomain.Wallet
	err := m.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Wallets.GetByInvestorID(ctx, investorID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledgererr.NotFound("wallet", investorID)
		}
		out = w
		return err
	})
	return out, err
}

func (m *Manager) ListTransactions(ctx context.Context, investorID string) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	err := m.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Transactions.ListByInvestorID(ctx, investorID)
		return err
	})
	return out, err
}

func (m *Manager) ListAllocations(ctx context.Context, investorID string) ([]allocation.Allocation, error) {
	var out []allocation.Allocation
	err := m.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Allocations.ListByInvestorID(ctx, investorID)
		return err
	})
	return out, err
}
