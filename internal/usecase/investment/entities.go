package investment

import "github.com/shopspring/decimal"

type SubmitInput struct {
	InvestorID    string
	FundPlanID    string
	Amount        decimal.Decimal
	PaymentMethod string
}

type RejectInput struct {
	RequestID string
	Reason    string
}
