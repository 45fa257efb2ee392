package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	allocationDomain "fund-ledger/internal/domain/allocation"
	auditDomain "fund-ledger/internal/domain/audit"
	fundplanDomain "fund-ledger/internal/domain/fundplan"
	investmentDomain "fund-ledger/internal/domain/investment"
	transactionDomain "fund-ledger/internal/domain/transaction"
	walletDomain "fund-ledger/internal/domain/wallet"
	withdrawalDomain "fund-ledger/internal/domain/withdrawal"
	"fund-ledger/internal/testutil/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWalletRepository_SaveVersionGuard(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewWalletRepository(db)
	seedWallet(t, db, investorA, 100)

	first, err := repo.GetByInvestorID(ctx, investorA)
	require.NoError(t, err)
	stale, err := repo.GetByInvestorID(ctx, investorA)
	require.NoError(t, err)

	require.NoError(t, first.Lock(dec("10")))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, stale.Lock(dec("20")))
	assert.ErrorIs(t, repo.Save(ctx, stale), walletDomain.ErrVersionConflict)

	got, err := repo.GetByInvestorIDForUpdate(ctx, investorA)
	require.NoError(t, err)
	assert.True(t, got.AvailableBalance.Equal(dec("90")), "available=%s", got.AvailableBalance)
	assert.True(t, got.LockedBalance.Equal(dec("10")), "locked=%s", got.LockedBalance)
}

func TestWalletRepository_SaveRequiresMutation(t *testing.T) {
	db := testdb.Open(t)
	w := seedWallet(t, db, investorA, 1)
	assert.Error(t, NewWalletRepository(db).Save(context.Background(), w))
}

func TestAllocationRepository_ActiveLookup(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewAllocationRepository(db)

	redeemed := &allocationDomain.Allocation{AllocationID: "al-old", InvestorID: investorA, FundPlanID: "plan",
		TotalInvested: decimal.Zero, CurrentValue: decimal.Zero, Status: allocationDomain.StatusRedeemed}
	active := &allocationDomain.Allocation{AllocationID: "al-new", InvestorID: investorA, FundPlanID: "plan",
		TotalInvested: dec("500.25"), CurrentValue: dec("500.25"), Status: allocationDomain.StatusActive}
	require.NoError(t, repo.Create(ctx, redeemed))
	require.NoError(t, repo.Create(ctx, active))

	got, err := repo.GetActiveForUpdate(ctx, investorA, "plan")
	require.NoError(t, err)
	assert.Equal(t, "al-new", got.AllocationID)
	assert.True(t, got.CurrentValue.Equal(dec("500.25")))

	_, err = repo.GetActiveForUpdate(ctx, investorA, "other-plan")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got.Invest(dec("100"))
	require.NoError(t, repo.Save(ctx, got))
	reloaded, err := repo.GetByAllocationIDForUpdate(ctx, "al-new")
	require.NoError(t, err)
	assert.True(t, reloaded.TotalInvested.Equal(dec("600.25")))

	list, err := repo.ListByInvestorID(ctx, investorA)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestInvestmentRepository_RoundTrip(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewInvestmentRepository(db)

	req := &investmentDomain.Request{RequestID: "inv-1", InvestorID: investorA, FundPlanID: "plan",
		RequestedAmount: dec("50000"), PaymentMethod: "wallet", Status: investmentDomain.StatusPendingExecution}
	require.NoError(t, repo.Create(ctx, req))

	locked, err := repo.GetByRequestIDForUpdate(ctx, "inv-1")
	require.NoError(t, err)
	require.NoError(t, locked.MarkExecuted("al-1", "admin", time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, locked))

	got, err := repo.GetByRequestID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, investmentDomain.StatusExecuted, got.Status)
	require.NotNil(t, got.AllocationID)
	assert.Equal(t, "al-1", *got.AllocationID)

	list, err := repo.ListByInvestorID(ctx, investorA)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByRequestID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWithdrawalRepository_OpenSumAndQueue(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewWithdrawalRepository(db)

	mk := func(id string, amt string, st withdrawalDomain.Status) {
		require.NoError(t, repo.Create(ctx, &withdrawalDomain.Request{RequestID: id, InvestorID: investorA,
			AllocationID: "al-1", FundPlanID: "plan", WithdrawalAmount: dec(amt),
			WithdrawalType: withdrawalDomain.TypePartial, Status: st}))
	}
	mk("w1", "100.50", withdrawalDomain.StatusPending)
	mk("w2", "200", withdrawalDomain.StatusApproved)
	mk("w3", "999", withdrawalDomain.StatusRejected)
	mk("w4", "50", withdrawalDomain.StatusProcessed)

	sum, err := repo.SumOpenByAllocationID(ctx, "al-1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("300.50")), "sum=%s", sum)

	none, err := repo.SumOpenByAllocationID(ctx, "al-2")
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	pending, err := repo.ListByStatus(ctx, withdrawalDomain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "w1", pending[0].RequestID)

	all, err := repo.ListByInvestorID(ctx, investorA)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	w2, err := repo.GetByRequestIDForUpdate(ctx, "w2")
	require.NoError(t, err)
	require.NoError(t, w2.MarkProcessed(time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, w2))
	got, err := repo.GetByRequestID(ctx, "w2")
	require.NoError(t, err)
	assert.Equal(t, withdrawalDomain.StatusProcessed, got.Status)
	assert.NotNil(t, got.ProcessedDate)
}

func TestTransactionRepository_UniqueReference(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewTransactionRepository(db)
	alloc := "al-1"

	mk := func(txID string) *transactionDomain.Transaction {
		return &transactionDomain.Transaction{
			TransactionID:    txID,
			InvestorID:       investorA,
			FundPlanID:       "plan",
			AllocationID:     &alloc,
			TransactionType:  transactionDomain.TypeRedemption,
			Amount:           dec("50000"),
			PaymentReference: transactionDomain.WithdrawalReference("w1"),
			Status:           transactionDomain.StatusCompleted,
			TransactionDate:  time.Now().UTC(),
		}
	}
	require.NoError(t, repo.Create(ctx, mk("t1")))
	assert.Error(t, repo.Create(ctx, mk("t2")), "second row with the same payment_reference must be refused")

	got, err := repo.GetByPaymentReference(ctx, "WITHDRAWAL_w1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.TransactionID)

	list, err := repo.ListByInvestorID(ctx, investorA)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByPaymentReference(ctx, "WITHDRAWAL_none")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFundPlanAndAuditRepositories(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&fundplanDomain.FundPlan{FundPlanID: "plan", PlanName: "Income",
		MinimumInvestment: dec("1000"), MaximumInvestment: decimal.Zero}).Error)
	p, err := NewFundPlanRepository(db).GetByFundPlanID(ctx, "plan")
	require.NoError(t, err)
	assert.Equal(t, "Income", p.PlanName)
	assert.False(t, p.HasMaximum())

	audits := NewAuditRepository(db)
	amt := dec("10")
	require.NoError(t, audits.Create(ctx, &auditDomain.Entry{ActorID: "u", ActorRole: "investor",
		Action: "withdrawal.created", EntityType: "withdrawal_request", EntityID: "w1", Amount: &amt}))
	entries, err := audits.ListByEntityID(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(amt))
}
