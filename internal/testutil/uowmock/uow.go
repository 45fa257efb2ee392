package uowmock

import (
	"context"
	"errors"

	"fund-ledger/internal/domain/uow"
	"fund-ledger/internal/domain/wallet"
)

// Ensure compile-time compliance
var (
	_ uow.UnitOfWork   = (*UoW)(nil)
	_ uow.WalletLocker = (*Locker)(nil)
)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinWalletTxFn func(ctx context.Context, investorID string, fn func(r uow.Repos, w *wallet.Wallet) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinWalletTx(fn func(context.Context, string, func(uow.Repos, *wallet.Wallet) error) error) *UoW {
	m.WithinWalletTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinWalletTx(ctx context.Context, investorID string, fn func(r uow.Repos, w *wallet.Wallet) error) error {
	if m.WithinWalletTxFn != nil {
		return m.WithinWalletTxFn(ctx, investorID, fn)
	}
	return errUnimplemented
}

// Locker satisfies uow.WalletLocker. With no WithWalletLockFn it runs fn
// directly, i.e. the lock is always granted.
type Locker struct {
	WithWalletLockFn func(ctx context.Context, investorID string, fn func(ctx context.Context) error) error
	Calls            []string
}

func (l *Locker) WithWalletLock(ctx context.Context, investorID string, fn func(ctx context.Context) error) error {
	l.Calls = append(l.Calls, investorID)
	if l.WithWalletLockFn != nil {
		return l.WithWalletLockFn(ctx, investorID, fn)
	}
	return fn(ctx)
}
