package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fund-ledger/internal/domain/fundplan"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultFundPlanTTL = 60 * time.Second

// FundPlans is a read-through Redis cache in front of the fund plan store.
// Redis failures fall through to the store.
type FundPlans struct {
	next fundplan.Repository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewFundPlans(next fundplan.Repository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *FundPlans {
	if ttl <= 0 {
		ttl = DefaultFundPlanTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FundPlans{next: next, rdb: rdb, ttl: ttl, log: log}
}

func fundPlanKey(id string) string { return "fundplan:" + id }

func (c *FundPlans) GetByFundPlanID(ctx context.Context, fundPlanID string) (*fundplan.FundPlan, error) {
	key := fundPlanKey(fundPlanID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p fundplan.FundPlan
		if uerr := json.Unmarshal(raw, &p); uerr == nil {
			return &p, nil
		}
		c.log.Warn("fund plan cache entry unreadable", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("fund plan cache read failed", zap.String("key", key), zap.Error(err))
	}

	p, err := c.next.GetByFundPlanID(ctx, fundPlanID)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(p); merr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warn("fund plan cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return p, nil
}
