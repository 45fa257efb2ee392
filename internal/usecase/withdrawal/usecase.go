package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fund-ledger/internal/domain/actor"
	"fund-ledger/internal/domain/allocation"
	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/transaction"
	"fund-ledger/internal/domain/uow"
	domainWallet "fund-ledger/internal/domain/wallet"
	domainWithdrawal "fund-ledger/internal/domain/withdrawal"
	"fund-ledger/internal/usecase/emitter"
	"fund-ledger/internal/usecase/wallet"
	"fund-ledger/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

const entityType = "withdrawal_request"

type Usecase struct {
	wallets *wallet.Manager
	uow     uow.UnitOfWork
	events  *emitter.Emitter
	log     *zap.Logger
}

func NewUsecase(wallets *wallet.Manager, tx uow.UnitOfWork, events *emitter.Emitter, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{wallets: wallets, uow: tx, events: events, log: log}
}

// Create files a pending request. It runs under the wallet lock so two
// requests cannot both claim the same allocation value.
func (u *Usecase) Create(ctx context.Context, act actor.Actor, in CreateInput) (*domainWithdrawal.Request, error) {
	typ, ok := domainWithdrawal.ParseType(in.Type)
	if !ok {
		return nil, ledgererr.Validation("withdrawal_type", "withdrawal_type must be full or partial")
	}
	if in.InvestorID == "" || in.AllocationID == "" {
		return nil, ledgererr.Validation("allocation_id", "investor_id and allocation_id are required")
	}

	var out domainWithdrawal.Request
	err := u.wallets.Within(ctx, "withdrawal.create", in.InvestorID, func(r uow.Repos, _ *domainWallet.Wallet) error {
		alloc, err := r.Allocations.GetByAllocationIDForUpdate(ctx, in.AllocationID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && alloc.InvestorID != in.InvestorID) {
			return ledgererr.NotFound("allocation", in.AllocationID)
		}
		if err != nil {
			return err
		}
		if alloc.Status != allocation.StatusActive {
			return ledgererr.InvalidTransition("allocation %s is %s", alloc.AllocationID, alloc.Status)
		}

		amount := in.Amount
		if typ == domainWithdrawal.TypeFull && amount.IsZero() {
			amount = alloc.CurrentValue
		}
		if err := alloc.CheckRedemption(amount, typ == domainWithdrawal.TypeFull); err != nil {
			return err
		}
		open, err := r.Withdrawals.SumOpenByAllocationID(ctx, alloc.AllocationID)
		if err != nil {
			return err
		}
		if open.Add(amount).GreaterThan(alloc.CurrentValue) {
			return ledgererr.Validation("withdrawal_amount",
				"amount %s plus open requests %s exceeds allocation value %s",
				amount.StringFixed(2), open.StringFixed(2), alloc.CurrentValue.StringFixed(2))
		}

		req := &domainWithdrawal.Request{
			RequestID:        id.NewID32(),
			InvestorID:       in.InvestorID,
			AllocationID:     alloc.AllocationID,
			FundPlanID:       alloc.FundPlanID,
			WithdrawalAmount: amount,
			WithdrawalType:   typ,
			Status:           domainWithdrawal.StatusPending,
		}
		if err := r.Withdrawals.Create(ctx, req); err != nil {
			return err
		}
		out = *req
		return nil
	})
	if err != nil {
		return nil, err
	}

	amount := out.WithdrawalAmount.StringFixed(2)
	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "withdrawal.created",
		EntityType: entityType,
		EntityID:   out.RequestID,
		InvestorID: out.InvestorID,
		Amount:     emitter.Amount(out.WithdrawalAmount),
		Details:    string(out.WithdrawalType),
		Notify: &emitter.Notification{
			UserID:   out.InvestorID,
			Title:    "Withdrawal request submitted",
			Message:  "Your " + string(out.WithdrawalType) + " withdrawal of " + amount + " is awaiting review.",
			Category: "withdrawal",
		},
		Email: &emitter.Email{
			Subject: "New withdrawal request",
			Body: fmt.Sprintf("<p>Investor <b>%s</b> requested a %s withdrawal of <b>%s</b> from allocation %s.</p>",
				out.InvestorID, out.WithdrawalType, amount, out.AllocationID),
		},
	})
	return &out, nil
}

// Approve moves pending to approved. No money moves.
func (u *Usecase) Approve(ctx context.Context, act actor.Actor, in ReviewInput) (*domainWithdrawal.Request, error) {
	out, err := u.review(ctx, in.RequestID, func(req *domainWithdrawal.Request) error {
		return req.Approve(in.Note, act.ID, nowUTC())
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "withdrawal.approved",
		EntityType: entityType,
		EntityID:   out.RequestID,
		InvestorID: out.InvestorID,
		Amount:     emitter.Amount(out.WithdrawalAmount),
		Details:    in.Note,
		Notify: &emitter.Notification{
			UserID:   out.InvestorID,
			Title:    "Withdrawal approved",
			Message:  "Your withdrawal of " + out.WithdrawalAmount.StringFixed(2) + " was approved and will be processed shortly.",
			Category: "withdrawal",
		},
	})
	return out, nil
}

// Reject moves pending to rejected. No money moves.
func (u *Usecase) Reject(ctx context.Context, act actor.Actor, in ReviewInput) (*domainWithdrawal.Request, error) {
	if in.Note == "" {
		return nil, ledgererr.Validation("rejection_reason", "rejection_reason is required")
	}
	out, err := u.review(ctx, in.RequestID, func(req *domainWithdrawal.Request) error {
		return req.Reject(in.Note, act.ID, nowUTC())
	})
	if err != nil {
		return nil, err
	}
	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "withdrawal.rejected",
		EntityType: entityType,
		EntityID:   out.RequestID,
		InvestorID: out.InvestorID,
		Amount:     emitter.Amount(out.WithdrawalAmount),
		Details:    in.Note,
		Notify: &emitter.Notification{
			UserID:   out.InvestorID,
			Title:    "Withdrawal rejected",
			Message:  "Your withdrawal request was rejected: " + in.Note,
			Category: "withdrawal",
		},
	})
	return out, nil
}

func (u *Usecase) review(ctx context.Context, requestID string, apply func(req *domainWithdrawal.Request) error) (*domainWithdrawal.Request, error) {
	var out domainWithdrawal.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Withdrawals.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := apply(req); err != nil {
			return err
		}
		if err := r.Withdrawals.Save(ctx, req); err != nil {
			return err
		}
		out = *req
		return nil
	})
	if err != nil {
		return nil, notFound(err, requestID)
	}
	return &out, nil
}

// Process settles an approved request: the allocation is debited, the wallet
// credited and a redemption transaction keyed WITHDRAWAL_{request_id} appended,
// all in one transaction under the wallet lock. A retry that finds the
// transaction already written returns success without moving money again.
func (u *Usecase) Process(ctx context.Context, act actor.Actor, requestID string) (*domainWithdrawal.Request, error) {
	head, err := u.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var (
		out       domainWithdrawal.Request
		replay    bool
		shortfall string
	)
	err = u.wallets.Within(ctx, "withdrawal.process", head.InvestorID, func(r uow.Repos, w *domainWallet.Wallet) error {
		ref := transaction.WithdrawalReference(requestID)
		req, err := r.Withdrawals.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		prev, err := r.Transactions.GetByPaymentReference(ctx, ref)
		switch {
		case err == nil:
			replay = true
			return u.repair(ctx, r, req, prev)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if req.Status != domainWithdrawal.StatusApproved {
			return ledgererr.InvalidTransition("withdrawal %s is %s, cannot move to %s",
				req.RequestID, req.Status, domainWithdrawal.StatusProcessed)
		}

		alloc, err := r.Allocations.GetByAllocationIDForUpdate(ctx, req.AllocationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledgererr.NotFound("allocation", req.AllocationID)
		}
		if err != nil {
			return err
		}
		if alloc.InvestorID != req.InvestorID {
			return ledgererr.Invariant("withdrawal %s references allocation %s of another investor",
				req.RequestID, alloc.AllocationID)
		}

		if _, err := alloc.Redeem(req.WithdrawalAmount, req.WithdrawalType == domainWithdrawal.TypeFull); err != nil {
			return err
		}
		if err := r.Allocations.Save(ctx, alloc); err != nil {
			return err
		}

		short, err := w.SettleRedemption(req.WithdrawalAmount)
		if err != nil {
			return err
		}
		if short.IsPositive() {
			shortfall = short.StringFixed(2)
		}
		if err := w.CheckInvariant(); err != nil {
			return err
		}
		if err := r.Wallets.Save(ctx, w); err != nil {
			return err
		}

		now := nowUTC()
		allocID := alloc.AllocationID
		if err := r.Transactions.Create(ctx, &transaction.Transaction{
			TransactionID:    id.NewID32(),
			InvestorID:       req.InvestorID,
			FundPlanID:       req.FundPlanID,
			AllocationID:     &allocID,
			TransactionType:  transaction.TypeRedemption,
			Amount:           req.WithdrawalAmount,
			PaymentReference: ref,
			Status:           transaction.StatusCompleted,
			TransactionDate:  now,
			Notes:            string(req.WithdrawalType) + " withdrawal",
		}); err != nil {
			return err
		}

		if err := req.MarkProcessed(now); err != nil {
			return err
		}
		if err := r.Withdrawals.Save(ctx, req); err != nil {
			return err
		}
		out = *req
		return nil
	})
	if err != nil {
		return nil, notFound(err, requestID)
	}
	if replay {
		u.log.Info("withdrawal already processed", zap.String("request_id", requestID))
		return u.Get(ctx, requestID)
	}

	if shortfall != "" {
		// locked was floored at zero; the amount never sat in the locked bucket
		u.log.Warn("locked balance clamped during withdrawal processing",
			zap.Bool("invariant", true),
			zap.String("request_id", requestID),
			zap.String("investor_id", out.InvestorID),
			zap.String("shortfall", shortfall))
	}

	amount := out.WithdrawalAmount.StringFixed(2)
	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "withdrawal.processed",
		EntityType: entityType,
		EntityID:   out.RequestID,
		InvestorID: out.InvestorID,
		Amount:     emitter.Amount(out.WithdrawalAmount),
		Details:    transaction.WithdrawalReference(out.RequestID),
		Notify: &emitter.Notification{
			UserID:   out.InvestorID,
			Title:    "Withdrawal processed",
			Message:  amount + " has been credited to your wallet.",
			Category: "withdrawal",
		},
		Email: &emitter.Email{
			Subject: "Withdrawal processed",
			Body: fmt.Sprintf("<p>Withdrawal %s for investor %s settled: <b>%s</b>.</p>",
				out.RequestID, out.InvestorID, amount),
		},
	})
	return &out, nil
}

// repair handles a redemption that is already in the log. If the request
// never reached processed the earlier run was only partly applied; the status
// is brought in line with the log without touching balances.
func (u *Usecase) repair(ctx context.Context, r uow.Repos, req *domainWithdrawal.Request, prev *transaction.Transaction) error {
	if req.Status == domainWithdrawal.StatusProcessed {
		return nil
	}
	if req.Status != domainWithdrawal.StatusApproved {
		return ledgererr.Invariant("withdrawal %s is %s but redemption %s exists",
			req.RequestID, req.Status, prev.PaymentReference)
	}
	u.log.Warn("repairing withdrawal status from transaction log",
		zap.String("request_id", req.RequestID),
		zap.String("payment_reference", prev.PaymentReference))
	if err := req.MarkProcessed(prev.TransactionDate); err != nil {
		return err
	}
	return r.Withdrawals.Save(ctx, req)
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*domainWithdrawal.Request, error) {
	var out *domainWithdrawal.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Withdrawals.GetByRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, notFound(err, requestID)
	}
	return out, nil
}

func (u *Usecase) List(ctx context.Context, investorID string) ([]domainWithdrawal.Request, error) {
	var out []domainWithdrawal.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Withdrawals.ListByInvestorID(ctx, investorID)
		return err
	})
	return out, err
}

// ListPending is the admin review queue, oldest first.
func (u *Usecase) ListPending(ctx context.Context) ([]domainWithdrawal.Request, error) {
	var out []domainWithdrawal.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Withdrawals.ListByStatus(ctx, domainWithdrawal.StatusPending)
		return err
	})
	return out, err
}

func notFound(err error, requestID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledgererr.NotFound("withdrawal_request", requestID)
	}
	return err
}
