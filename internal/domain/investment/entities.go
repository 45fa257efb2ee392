package investment

import (
	"time"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPendingExecution Status = "pending_execution"
	StatusExecuted         Status = "executed"
	StatusRejected         Status = "rejected"
)

func (s Status) Terminal() bool { return s == StatusExecuted || s == StatusRejected }

// Table: investment_requests
type Request struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	RequestID       string          `gorm:"column:request_id;size:32;not null;uniqueIndex:ux_investment_requests_request_id" json:"request_id"`
	InvestorID      string          `gorm:"column:investor_id;size:32;not null;index" json:"investor_id"`
	FundPlanID      string          `gorm:"column:fund_plan_id;size:32;not null" json:"fund_plan_id"`
	RequestedAmount decimal.Decimal `gorm:"column:requested_amount;type:decimal(18,2);not null" json:"requested_amount"`
	PaymentMethod   string          `gorm:"column:payment_method;size:32" json:"payment_method"`
	Status          Status          `gorm:"column:status;type:varchar(24);not null" json:"status"`
	AllocationID    *string         `gorm:"column:allocation_id;size:32" json:"allocation_id,omitempty"`
	RejectionReason string          `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ReviewedBy      string          `gorm:"column:reviewed_by;size:64" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "investment_requests" }

func (r *Request) guardPending(action string) error {
	if r.Status != StatusPendingExecution {
		return ledgererr.InvalidTransition("cannot %s investment request %s in status %s", action, r.RequestID, r.Status)
	}
	return nil
}

func (r *Request) MarkExecuted(allocationID, by string, at time.Time) error {
	if err := r.guardPending("execute"); err != nil {
		return err
	}
	r.Status = StatusExecuted
	r.AllocationID = &allocationID
	r.ReviewedBy = by
	r.ReviewedAt = &at
	return nil
}

func (r *Request) MarkRejected(reason, by string, at time.Time) error {
	if err := r.guardPending("reject"); err != nil {
		return err
	}
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.ReviewedBy = by
	r.ReviewedAt = &at
	return nil
}
