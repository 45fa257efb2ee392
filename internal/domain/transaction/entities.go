package transaction

import (
	"strings"
	"time"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeDeposit    Type = "deposit"
	TypeInvestment Type = "investment"
	TypeRedemption Type = "redemption"
)

type Status string

const (
	StatusCompleted Status = "completed"
)

const (
	withdrawalRefPrefix = "WITHDRAWAL_"
	investmentRefPrefix = "INVESTMENT_"
)

// WithdrawalReference is the idempotency key of a processed withdrawal.
func WithdrawalReference(requestID string) string { return withdrawalRefPrefix + requestID }

// InvestmentReference is the idempotency key of an executed investment.
func InvestmentReference(requestID string) string { return investmentRefPrefix + requestID }

// Table: transactions. Append-only; rows are never updated.
type Transaction struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	TransactionID    string          `gorm:"column:transaction_id;size:32;not null;uniqueIndex:ux_transactions_transaction_id" json:"transaction_id"`
	InvestorID       string          `gorm:"column:investor_id;size:32;not null;index" json:"investor_id"`
	FundPlanID       string          `gorm:"column:fund_plan_id;size:32" json:"fund_plan_id,omitempty"`
	AllocationID     *string         `gorm:"column:allocation_id;size:32" json:"allocation_id,omitempty"`
	TransactionType  Type            `gorm:"column:transaction_type;type:varchar(16);not null" json:"transaction_type"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	PaymentReference string          `gorm:"column:payment_reference;size:128;not null;uniqueIndex:ux_transactions_payment_reference" json:"payment_reference"`
	Status           Status          `gorm:"column:status;type:varchar(16);not null" json:"status"`
	TransactionDate  time.Time       `gorm:"column:transaction_date;not null" json:"transaction_date"`
	Notes            string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Validate runs at write time so a malformed idempotency key never lands in the log.
func (t *Transaction) Validate() error {
	if t.InvestorID == "" {
		return ledgererr.Validation("investor_id", "investor_id is required")
	}
	if !t.Amount.IsPositive() {
		return ledgererr.Validation("amount", "transaction amount must be greater than zero")
	}
	ref := strings.TrimSpace(t.PaymentReference)
	if ref == "" || ref != t.PaymentReference {
		return ledgererr.Validation("payment_reference", "payment_reference is required and must not be padded")
	}
	switch t.TransactionType {
	case TypeRedemption:
		if !strings.HasPrefix(ref, withdrawalRefPrefix) || len(ref) == len(withdrawalRefPrefix) {
			return ledgererr.Validation("payment_reference", "redemption reference must be %s{request_id}", withdrawalRefPrefix)
		}
		if t.AllocationID == nil {
			return ledgererr.Validation("allocation_id", "redemption must reference an allocation")
		}
	case TypeInvestment:
		if !strings.HasPrefix(ref, investmentRefPrefix) || len(ref) == len(investmentRefPrefix) {
			return ledgererr.Validation("payment_reference", "investment reference must be %s{request_id}", investmentRefPrefix)
		}
	case TypeDeposit:
		if strings.HasPrefix(ref, withdrawalRefPrefix) || strings.HasPrefix(ref, investmentRefPrefix) {
			return ledgererr.Validation("payment_reference", "deposit reference uses a reserved prefix")
		}
	default:
		return ledgererr.Validation("transaction_type", "unknown transaction type %q", t.TransactionType)
	}
	return nil
}

// SignedAmount is the transaction's effect on total_deposited - total_withdrawn.
// Investments move money between wallet and allocation and are neutral.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Status != StatusCompleted {
		return decimal.Zero
	}
	switch t.TransactionType {
	case TypeDeposit:
		return t.Amount
	case TypeRedemption:
		return t.Amount.Neg()
	}
	return decimal.Zero
}
