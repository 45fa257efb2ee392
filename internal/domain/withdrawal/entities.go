package withdrawal

import (
	"time"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusProcessed Status = "processed"
	StatusRejected  Status = "rejected"
)

type Type string

const (
	TypeFull    Type = "full"
	TypePartial Type = "partial"
)

func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case TypeFull, TypePartial:
		return t, true
	}
	return "", false
}

// Open requests still hold a claim on their allocation.
func (s Status) Open() bool { return s == StatusPending || s == StatusApproved }

// Table: withdrawal_requests
type Request struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	RequestID        string          `gorm:"column:request_id;size:32;not null;uniqueIndex:ux_withdrawal_requests_request_id" json:"request_id"`
	InvestorID       string          `gorm:"column:investor_id;size:32;not null;index" json:"investor_id"`
	AllocationID     string          `gorm:"column:allocation_id;size:32;not null;index" json:"allocation_id"`
	FundPlanID       string          `gorm:"column:fund_plan_id;size:32;not null" json:"fund_plan_id"`
	WithdrawalAmount decimal.Decimal `gorm:"column:withdrawal_amount;type:decimal(18,2);not null" json:"withdrawal_amount"`
	WithdrawalType   Type            `gorm:"column:withdrawal_type;type:varchar(16);not null" json:"withdrawal_type"`
	Status           Status          `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	AdminNotes       string          `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	RejectionReason  string          `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ReviewedBy       string          `gorm:"column:reviewed_by;size:64" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ProcessedDate    *time.Time      `gorm:"column:processed_date" json:"processed_date,omitempty"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "withdrawal_requests" }

func (r *Request) transition(from, to Status) error {
	if r.Status != from {
		return ledgererr.InvalidTransition("withdrawal %s is %s, cannot move to %s", r.RequestID, r.Status, to)
	}
	r.Status = to
	return nil
}

// pending -> approved
func (r *Request) Approve(notes, by string, at time.Time) error {
	if err := r.transition(StatusPending, StatusApproved); err != nil {
		return err
	}
	r.AdminNotes = notes
	r.ReviewedBy = by
	r.ReviewedAt = &at
	return nil
}

// pending -> rejected
func (r *Request) Reject(reason, by string, at time.Time) error {
	if err := r.transition(StatusPending, StatusRejected); err != nil {
		return err
	}
	r.RejectionReason = reason
	r.ReviewedBy = by
	r.ReviewedAt = &at
	return nil
}

// approved -> processed
func (r *Request) MarkProcessed(at time.Time) error {
	if err := r.transition(StatusApproved, StatusProcessed); err != nil {
		return err
	}
	r.ProcessedDate = &at
	return nil
}
