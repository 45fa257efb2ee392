package withdrawal

import "github.com/shopspring/decimal"

type CreateInput struct {
	InvestorID   string
	AllocationID string
	// zero with Type full means the whole current value
	Amount decimal.Decimal
	Type   string
}

type ReviewInput struct {
	RequestID string
	// admin notes on approve, rejection reason on reject
	Note string
}
