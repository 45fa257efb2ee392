package uowmock

import (
	"context"
	"errors"
	"testing"

	"fund-ledger/internal/domain/uow"
	"fund-ledger/internal/domain/wallet"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()
	repos := uow.Repos{}

	innerCalled := false
	m := New().WithWithinTx(func(gotCtx context.Context, fn func(r uow.Repos) error) error {
		if gotCtx != ctx {
			t.Fatalf("WithinTx: ctx mismatch")
		}
		return fn(repos)
	})

	if err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		return nil
	}); err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinWalletTx_PassesWallet(t *testing.T) {
	const investor = "iiiiiiiiiiiiiiiiiiiiiiiiiiiiiiii"
	w := wallet.New(investor)
	m := New().WithWithinWalletTx(func(ctx context.Context, id string, fn func(uow.Repos, *wallet.Wallet) error) error {
		if id != investor {
			t.Fatalf("investor id mismatch: %s", id)
		}
		return fn(uow.Repos{}, w)
	})

	var got *wallet.Wallet
	if err := m.WithinWalletTx(context.Background(), investor, func(_ uow.Repos, gw *wallet.Wallet) error {
		got = gw
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if got != w {
		t.Fatalf("wallet not forwarded")
	}
}

func TestUoW_Unimplemented(t *testing.T) {
	m := New()
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: want errUnimplemented, got %v", err)
	}
	if err := m.WithinWalletTx(context.Background(), "x", func(uow.Repos, *wallet.Wallet) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinWalletTx: want errUnimplemented, got %v", err)
	}
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil })
	m.Reset()
	if m.WithinTxFn != nil {
		t.Fatalf("Reset did not clear fields")
	}
}

func TestLocker_DefaultRunsFn(t *testing.T) {
	l := &Locker{}
	ran := false
	if err := l.WithWalletLock(context.Background(), "w1", func(context.Context) error {
		ran = true
		return nil
	}); err != nil || !ran {
		t.Fatalf("default locker: ran=%v err=%v", ran, err)
	}
	if len(l.Calls) != 1 || l.Calls[0] != "w1" {
		t.Fatalf("calls = %v", l.Calls)
	}
}

func TestLocker_CustomFn(t *testing.T) {
	busy := errors.New("busy")
	l := &Locker{WithWalletLockFn: func(context.Context, string, func(context.Context) error) error { return busy }}
	if err := l.WithWalletLock(context.Background(), "w1", func(context.Context) error {
		t.Fatalf("fn must not run")
		return nil
	}); !errors.Is(err, busy) {
		t.Fatalf("want busy, got %v", err)
	}
}

