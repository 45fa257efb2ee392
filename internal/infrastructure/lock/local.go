package lock

import (
	"context"
	"sync"
	"time"

	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/uow"
)

var _ uow.WalletLocker = (*LocalLocker)(nil)

type slot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is the in-process wallet lock used when Redis is not configured.
type LocalLocker struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

func NewLocalLocker(timeout time.Duration) *LocalLocker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LocalLocker{slots: map[string]*slot{}, timeout: timeout}
}

func (l *LocalLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	if s == nil {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) WithWalletLock(ctx context.Context, investorID string, fn func(ctx context.Context) error) error {
	key := Key(investorID)
	s := l.ref(key)
	defer l.unref(key, s)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-timer.C:
		return ledgererr.Busy("wallet %s is busy, retry later", investorID)
	case <-ctx.Done():
		return ledgererr.Busy("wallet %s lock wait aborted: %v", investorID, ctx.Err())
	}
	defer func() { <-s.ch }()

	return fn(ctx)
}
