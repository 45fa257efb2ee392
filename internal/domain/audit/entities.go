package audit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table: audit_logs
type Entry struct {
	ID         uint64           `gorm:"primaryKey;column:id" json:"-"`
	ActorID    string           `gorm:"column:actor_id;size:64;not null" json:"actor_id"`
	ActorRole  string           `gorm:"column:actor_role;size:32;not null" json:"actor_role"`
	Action     string           `gorm:"column:action;size:64;not null;index" json:"action"`
	EntityType string           `gorm:"column:entity_type;size:32;not null" json:"entity_type"`
	EntityID   string           `gorm:"column:entity_id;size:64;not null;index" json:"entity_id"`
	InvestorID string           `gorm:"column:investor_id;size:32;index" json:"investor_id"`
	Amount     *decimal.Decimal `gorm:"column:amount;type:decimal(18,2)" json:"amount,omitempty"`
	Details    string           `gorm:"column:details;type:text" json:"details,omitempty"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }
