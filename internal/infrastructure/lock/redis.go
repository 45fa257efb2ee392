package lock

import (
	"context"
	"time"

	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/uow"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTimeout    = 3 * time.Second
	DefaultExpiry     = 15 * time.Second
	DefaultRetryDelay = 50 * time.Millisecond
)

var _ uow.WalletLocker = (*RedisLocker)(nil)

func Key(investorID string) string { return "lock:wallet:" + investorID }

type Options struct {
	// how long a caller may wait for the lock
	Timeout time.Duration
	// auto-release if the holder dies
	Expiry     time.Duration
	RetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Expiry <= 0 {
		o.Expiry = DefaultExpiry
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// RedisLocker takes a RedLock per wallet so instances behind a load balancer
// serialize on the same key.
type RedisLocker struct {
	rs   *redsync.Redsync
	opts Options
	log  *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, opts Options, log *zap.Logger) *RedisLocker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{
		rs:   redsync.New(goredis.NewPool(rdb)),
		opts: opts.withDefaults(),
		log:  log,
	}
}

func (l *RedisLocker) WithWalletLock(ctx context.Context, investorID string, fn func(ctx context.Context) error) error {
	key := Key(investorID)
	tries := int(l.opts.Timeout/l.opts.RetryDelay) + 1
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	lockCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	if err := mutex.LockContext(lockCtx); err != nil {
		l.log.Warn("wallet lock not acquired", zap.String("lock_key", key), zap.Error(err))
		return ledgererr.Busy("wallet %s is busy, retry later", investorID)
	}

	defer func() {
		// released on a fresh context so a cancelled request still frees the key
		relCtx, relCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer relCancel()
		if ok, err := mutex.UnlockContext(relCtx); !ok || err != nil {
			l.log.Error("wallet lock release failed", zap.String("lock_key", key), zap.Bool("unlock_ok", ok), zap.Error(err))
		}
	}()

	return fn(ctx)
}
