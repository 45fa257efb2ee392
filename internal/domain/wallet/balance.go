package wallet

import (
	"time"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/shopspring/decimal"
)

// CreditKind selects which lifetime total a credit is booked against.
type CreditKind int

const (
	CreditDeposit CreditKind = iota
	CreditRedemption
)

var nowUTC = func() time.Time { return time.Now().UTC() }

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledgererr.Validation("amount", "amount must be greater than zero")
	}
	return nil
}

func (w *Wallet) touch() {
	now := nowUTC()
	w.LastTransactionAt = &now
	if !w.dirty {
		w.Version++
		w.dirty = true
	}
}

// Lock moves amount from available to locked.
func (w *Wallet) Lock(amount decimal.Decimal) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if w.AvailableBalance.LessThan(amount) {
		return ledgererr.InsufficientFunds("available balance %s is below requested %s",
			w.AvailableBalance.StringFixed(2), amount.StringFixed(2))
	}
	w.AvailableBalance = w.AvailableBalance.Sub(amount)
	w.LockedBalance = w.LockedBalance.Add(amount)
	w.touch()
	return nil
}

// Unlock moves amount from locked back to available. Unlocking more than is
// locked means a workflow lost track of a lock and is never clamped.
func (w *Wallet) Unlock(amount decimal.Decimal) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if w.LockedBalance.LessThan(amount) {
		return ledgererr.Invariant("wallet %s: unlock %s exceeds locked balance %s",
			w.InvestorID, amount.StringFixed(2), w.LockedBalance.StringFixed(2))
	}
	w.LockedBalance = w.LockedBalance.Sub(amount)
	w.AvailableBalance = w.AvailableBalance.Add(amount)
	w.touch()
	return nil
}

// Debit consumes locked funds permanently; available is untouched.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if w.LockedBalance.LessThan(amount) {
		return ledgererr.Invariant("wallet %s: debit %s exceeds locked balance %s",
			w.InvestorID, amount.StringFixed(2), w.LockedBalance.StringFixed(2))
	}
	w.LockedBalance = w.LockedBalance.Sub(amount)
	w.touch()
	return nil
}

func (w *Wallet) Credit(kind CreditKind, amount decimal.Decimal) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	w.AvailableBalance = w.AvailableBalance.Add(amount)
	switch kind {
	case CreditDeposit:
		w.TotalDeposited = w.TotalDeposited.Add(amount)
	case CreditRedemption:
		w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
	}
	w.touch()
	return nil
}

// SettleRedemption books redeemed allocation money into the wallet and reduces
// the locked bucket by the same amount, floored at zero. The returned shortfall
// is how far below zero locked would have gone without the floor.
func (w *Wallet) SettleRedemption(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := w.Credit(CreditRedemption, amount); err != nil {
		return decimal.Zero, err
	}
	remaining := w.LockedBalance.Sub(amount)
	if remaining.IsNegative() {
		w.LockedBalance = decimal.Zero
		return remaining.Neg(), nil
	}
	w.LockedBalance = remaining
	return decimal.Zero, nil
}

// CheckInvariant reports a negative bucket as an invariant violation.
func (w *Wallet) CheckInvariant() error {
	if w.AvailableBalance.IsNegative() || w.LockedBalance.IsNegative() {
		return ledgererr.Invariant("wallet %s: negative balance (available=%s locked=%s)",
			w.InvestorID, w.AvailableBalance.StringFixed(2), w.LockedBalance.StringFixed(2))
	}
	return nil
}
