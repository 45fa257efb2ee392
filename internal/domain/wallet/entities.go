package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table: wallets. One row per investor, never deleted.
type Wallet struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	InvestorID        string          `gorm:"column:investor_id;size:32;not null;uniqueIndex:ux_wallets_investor_id" json:"investor_id"`
	AvailableBalance  decimal.Decimal `gorm:"column:available_balance;type:decimal(18,2);not null" json:"available_balance"`
	LockedBalance     decimal.Decimal `gorm:"column:locked_balance;type:decimal(18,2);not null" json:"locked_balance"`
	TotalDeposited    decimal.Decimal `gorm:"column:total_deposited;type:decimal(18,2);not null" json:"total_deposited"`
	TotalWithdrawn    decimal.Decimal `gorm:"column:total_withdrawn;type:decimal(18,2);not null" json:"total_withdrawn"`
	Version           uint64          `gorm:"column:version;not null" json:"version"`
	LastTransactionAt *time.Time      `gorm:"column:last_transaction_at" json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// set once the loaded row has been mutated; Version moves at most once per load
	dirty bool
}

func (Wallet) TableName() string { return "wallets" }

func New(investorID string) *Wallet {
	return &Wallet{
		InvestorID:       investorID,
		AvailableBalance: decimal.Zero,
		LockedBalance:    decimal.Zero,
		TotalDeposited:   decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
	}
}
