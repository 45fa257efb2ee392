package allocation

import (
	"time"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusRedeemed Status = "redeemed"
)

// Table: allocations. An investor's position in one fund plan.
type Allocation struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	AllocationID  string          `gorm:"column:allocation_id;size:32;not null;uniqueIndex:ux_allocations_allocation_id" json:"allocation_id"`
	InvestorID    string          `gorm:"column:investor_id;size:32;not null;index:idx_allocations_investor_plan" json:"investor_id"`
	FundPlanID    string          `gorm:"column:fund_plan_id;size:32;not null;index:idx_allocations_investor_plan" json:"fund_plan_id"`
	TotalInvested decimal.Decimal `gorm:"column:total_invested;type:decimal(18,2);not null" json:"total_invested"`
	CurrentValue  decimal.Decimal `gorm:"column:current_value;type:decimal(18,2);not null" json:"current_value"`
	Status        Status          `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Allocation) TableName() string { return "allocations" }

// Invest adds executed investment money to the position.
func (a *Allocation) Invest(amount decimal.Decimal) {
	a.TotalInvested = a.TotalInvested.Add(amount)
	a.CurrentValue = a.CurrentValue.Add(amount)
	a.Status = StatusActive
}

// IsFullRedemption decides full vs partial. The amount comparison wins over the
// requested withdrawal type.
func (a *Allocation) IsFullRedemption(amount decimal.Decimal, fullRequested bool) bool {
	return fullRequested || amount.GreaterThanOrEqual(a.TotalInvested)
}

// CheckRedemption reports whether amount can come out of the position. A
// redemption that closes the allocation must take its whole current value;
// anything less would be stranded on a redeemed allocation.
func (a *Allocation) CheckRedemption(amount decimal.Decimal, fullRequested bool) error {
	if !amount.IsPositive() {
		return ledgererr.Validation("withdrawal_amount", "amount must be greater than zero")
	}
	if a.Status != StatusActive {
		return ledgererr.InvalidTransition("allocation %s is %s", a.AllocationID, a.Status)
	}
	if amount.GreaterThan(a.CurrentValue) {
		return ledgererr.Validation("withdrawal_amount", "amount %s exceeds allocation value %s",
			amount.StringFixed(2), a.CurrentValue.StringFixed(2))
	}
	if a.IsFullRedemption(amount, fullRequested) && !amount.Equal(a.CurrentValue) {
		return ledgererr.Validation("withdrawal_amount", "full redemption must be for the allocation value %s, got %s",
			a.CurrentValue.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}

// Redeem takes amount out of the position and reports whether it was closed.
func (a *Allocation) Redeem(amount decimal.Decimal, fullRequested bool) (bool, error) {
	if err := a.CheckRedemption(amount, fullRequested); err != nil {
		return false, err
	}
	a.CurrentValue = a.CurrentValue.Sub(amount)
	if a.IsFullRedemption(amount, fullRequested) {
		a.TotalInvested = decimal.Zero
		a.Status = StatusRedeemed
		return true, nil
	}
	a.TotalInvested = a.TotalInvested.Sub(amount)
	return false, nil
}
