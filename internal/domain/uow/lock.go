package uow

import "context"

// WalletLocker serializes work on one investor's wallet across goroutines and
// service instances. Implementations give up with ledgererr.ErrBusy once their
// acquisition timeout elapses.
type WalletLocker interface {
	WithWalletLock(ctx context.Context, investorID string, fn func(ctx context.Context) error) error
}
