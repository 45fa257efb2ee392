package transaction

import "context"

type Repository interface {
	// Create validates the record before inserting it.
	Create(ctx context.Context, t *Transaction) error
	GetByPaymentReference(ctx context.Context, ref string) (*Transaction, error)
	ListByInvestorID(ctx context.Context, investorID string) ([]Transaction, error)
}
