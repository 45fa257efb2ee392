package wallet

import (
	"context"
	"errors"
)

type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByInvestorID(ctx context.Context, investorID string) (*Wallet, error)
	// row lock held until the surrounding transaction ends
	GetByInvestorIDForUpdate(ctx context.Context, investorID string) (*Wallet, error)
	Save(ctx context.Context, w *Wallet) error
}

// ErrVersionConflict is returned by Save when the stored version moved underneath the caller.
var ErrVersionConflict = errors.New("wallet version conflict")
