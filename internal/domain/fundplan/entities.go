package fundplan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table: fund_plans. Read-only from the ledger's point of view.
type FundPlan struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	FundPlanID        string          `gorm:"column:fund_plan_id;size:32;not null;uniqueIndex:ux_fund_plans_fund_plan_id" json:"fund_plan_id"`
	PlanName          string          `gorm:"column:plan_name;size:128;not null" json:"plan_name"`
	MinimumInvestment decimal.Decimal `gorm:"column:minimum_investment;type:decimal(18,2);not null" json:"minimum_investment"`
	// zero means no upper bound
	MaximumInvestment decimal.Decimal `gorm:"column:maximum_investment;type:decimal(18,2);not null" json:"maximum_investment"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FundPlan) TableName() string { return "fund_plans" }

func (p *FundPlan) HasMaximum() bool { return p.MaximumInvestment.IsPositive() }
