// Package ledgertest wires the real gorm repositories against an in-memory
// sqlite database for workflow tests.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"fund-ledger/internal/adapter/repository/mysql"
	"fund-ledger/internal/domain/allocation"
	"fund-ledger/internal/domain/fundplan"
	"fund-ledger/internal/domain/transaction"
	"fund-ledger/internal/domain/wallet"
	"fund-ledger/internal/infrastructure/lock"
	"fund-ledger/internal/testutil/notifymock"
	"fund-ledger/internal/testutil/testdb"
	"fund-ledger/internal/usecase/emitter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const OpsEmail = "ops@fund.test"

type Env struct {
	DB       *gorm.DB
	UoW      *mysql.GormUoW
	Locker   *lock.LocalLocker
	Notifier *notifymock.Notifier
	Mailer   *notifymock.Mailer
	Emitter  *emitter.Emitter
	Log      *zap.Logger
	Logs     *observer.ObservedLogs
}

func New(t testing.TB) *Env {
	t.Helper()
	db := testdb.Open(t)
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)
	e := &Env{
		DB:       db,
		UoW:      mysql.NewGormUoW(db),
		Locker:   lock.NewLocalLocker(2 * time.Second),
		Notifier: &notifymock.Notifier{},
		Mailer:   &notifymock.Mailer{},
		Log:      log,
		Logs:     logs,
	}
	e.Emitter = emitter.New(mysql.NewAuditRepository(db), e.Notifier, e.Mailer, OpsEmail, log)
	return e
}

func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SeedWallet creates a wallet with the given buckets. Available money is
// booked as deposited so conservation holds for the seed.
func (e *Env) SeedWallet(t testing.TB, investorID, available, locked string) {
	t.Helper()
	w := wallet.New(investorID)
	w.AvailableBalance = D(available)
	w.LockedBalance = D(locked)
	w.TotalDeposited = D(available).Add(D(locked))
	if err := e.DB.Create(w).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	if w.TotalDeposited.IsPositive() {
		e.mustCreate(t, &transaction.Transaction{
			TransactionID:    "seed-" + investorID,
			InvestorID:       investorID,
			TransactionType:  transaction.TypeDeposit,
			Amount:           w.TotalDeposited,
			PaymentReference: "SEED_" + investorID,
			Status:           transaction.StatusCompleted,
			TransactionDate:  time.Now().UTC(),
		})
	}
}

func (e *Env) SeedPlan(t testing.TB, fundPlanID, minimum, maximum string) {
	t.Helper()
	e.mustCreate(t, &fundplan.FundPlan{
		FundPlanID:        fundPlanID,
		PlanName:          "Plan " + fundPlanID,
		MinimumInvestment: D(minimum),
		MaximumInvestment: D(maximum),
	})
}

func (e *Env) SeedAllocation(t testing.TB, allocationID, investorID, fundPlanID, invested string) {
	t.Helper()
	e.mustCreate(t, &allocation.Allocation{
		AllocationID:  allocationID,
		InvestorID:    investorID,
		FundPlanID:    fundPlanID,
		TotalInvested: D(invested),
		CurrentValue:  D(invested),
		Status:        allocation.StatusActive,
	})
}

func (e *Env) mustCreate(t testing.TB, v any) {
	t.Helper()
	if err := e.DB.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

func (e *Env) Wallet(t testing.TB, investorID string) *wallet.Wallet {
	t.Helper()
	w, err := mysql.NewWalletRepository(e.DB).GetByInvestorID(context.Background(), investorID)
	if err != nil {
		t.Fatalf("load wallet %s: %v", investorID, err)
	}
	return w
}

func (e *Env) Allocation(t testing.TB, allocationID string) *allocation.Allocation {
	t.Helper()
	a, err := mysql.NewAllocationRepository(e.DB).GetByAllocationID(context.Background(), allocationID)
	if err != nil {
		t.Fatalf("load allocation %s: %v", allocationID, err)
	}
	return a
}

func (e *Env) Transactions(t testing.TB, investorID string) []transaction.Transaction {
	t.Helper()
	list, err := mysql.NewTransactionRepository(e.DB).ListByInvestorID(context.Background(), investorID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	return list
}

// AssertConserved checks total_deposited - total_withdrawn against the signed
// transaction log and that neither bucket is negative.
func (e *Env) AssertConserved(t testing.TB, investorID string) {
	t.Helper()
	w := e.Wallet(t, investorID)
	if w.AvailableBalance.IsNegative() || w.LockedBalance.IsNegative() {
		t.Fatalf("negative bucket: available=%s locked=%s", w.AvailableBalance, w.LockedBalance)
	}
	sum := decimal.Zero
	for _, tx := range e.Transactions(t, investorID) {
		sum = sum.Add(tx.SignedAmount())
	}
	if want := w.TotalDeposited.Sub(w.TotalWithdrawn); !want.Equal(sum) {
		t.Fatalf("conservation broken: deposited-withdrawn=%s, transaction sum=%s", want, sum)
	}
}

// FailInsertsInto makes every INSERT into table fail, for rollback tests.
func (e *Env) FailInsertsInto(t testing.TB, table string, err error) {
	t.Helper()
	cbErr := e.DB.Callback().Create().Before("gorm:create").Register("ledgertest:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	})
	if cbErr != nil {
		t.Fatalf("register callback: %v", cbErr)
	}
}
