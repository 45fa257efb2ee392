package wallet

import (
	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/transaction"
	walletDomain "fund-ledger/internal/domain/wallet"
	"fund-ledger/pkg/id"

	"github.com/shopspring/decimal"
)

type DepositInput struct {
	InvestorID       string
	Amount           decimal.Decimal
	PaymentReference string
	Notes            string
}

// CreditInput books money into a wallet. Redemptions need the allocation they
// came from and a WITHDRAWAL_{request_id} reference.
type CreditInput struct {
	InvestorID       string
	Kind             walletDomain.CreditKind
	Amount           decimal.Decimal
	PaymentReference string
	FundPlanID       string
	AllocationID     string
	Notes            string
}

// entry builds and validates the log entry before any balance moves.
func (in CreditInput) entry() (*transaction.Transaction, error) {
	if in.InvestorID == "" {
		return nil, ledgererr.Validation("investor_id", "investor_id is required")
	}
	tx := &transaction.Transaction{
		TransactionID:    id.NewID32(),
		InvestorID:       in.InvestorID,
		FundPlanID:       in.FundPlanID,
		Amount:           in.Amount,
		PaymentReference: in.PaymentReference,
		Status:           transaction.StatusCompleted,
		TransactionDate:  nowUTC(),
		Notes:            in.Notes,
	}
	switch in.Kind {
	case walletDomain.CreditDeposit:
		tx.TransactionType = transaction.TypeDeposit
	case walletDomain.CreditRedemption:
		tx.TransactionType = transaction.TypeRedemption
	default:
		return nil, ledgererr.Validation("kind", "unknown credit kind %d", in.Kind)
	}
	if in.AllocationID != "" {
		allocationID := in.AllocationID
		tx.AllocationID = &allocationID
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}
