package investment

import (
	"context"
	"errors"
	"time"

	"fund-ledger/internal/domain/actor"
	"fund-ledger/internal/domain/allocation"
	"fund-ledger/internal/domain/fundplan"
	domainInvestment "fund-ledger/internal/domain/investment"
	"fund-ledger/internal/domain/ledgererr"
	"fund-ledger/internal/domain/transaction"
	"fund-ledger/internal/domain/uow"
	domainWallet "fund-ledger/internal/domain/wallet"
	"fund-ledger/internal/usecase/emitter"
	"fund-ledger/internal/usecase/wallet"
	"fund-ledger/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

type Usecase struct {
	wallets *wallet.Manager
	uow     uow.UnitOfWork
	plans   fundplan.Repository
	events  *emitter.Emitter
	log     *zap.Logger
}

// NewUsecase: plans is read outside the ledger transaction, so it may be cached.
func NewUsecase(wallets *wallet.Manager, tx uow.UnitOfWork, plans fundplan.Repository, events *emitter.Emitter, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{wallets: wallets, uow: tx, plans: plans, events: events, log: log}
}

// Submit creates a pending_execution request and locks its amount in the same
// transaction; a failed lock leaves no request behind.
func (u *Usecase) Submit(ctx context.Context, act actor.Actor, in SubmitInput) (*domainInvestment.Request, error) {
	if in.InvestorID == "" {
		return nil, ledgererr.Validation("investor_id", "investor_id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, ledgererr.Validation("requested_amount", "amount must be greater than zero")
	}
	plan, err := u.plans.GetByFundPlanID(ctx, in.FundPlanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledgererr.NotFound("fund_plan", in.FundPlanID)
	}
	if err != nil {
		return nil, err
	}
	if in.Amount.LessThan(plan.MinimumInvestment) {
		return nil, ledgererr.Validation("requested_amount", "minimum investment for %s is %s",
			plan.PlanName, plan.MinimumInvestment.StringFixed(2))
	}
	if plan.HasMaximum() && in.Amount.GreaterThan(plan.MaximumInvestment) {
		return nil, ledgererr.Validation("requested_amount", "maximum investment for %s is %s",
			plan.PlanName, plan.MaximumInvestment.StringFixed(2))
	}

	req := &domainInvestment.Request{
		RequestID:       id.NewID32(),
		InvestorID:      in.InvestorID,
		FundPlanID:      in.FundPlanID,
		RequestedAmount: in.Amount,
		PaymentMethod:   in.PaymentMethod,
		Status:          domainInvestment.StatusPendingExecution,
	}
	err = u.wallets.Within(ctx, "investment.submit", in.InvestorID, func(r uow.Repos, w *domainWallet.Wallet) error {
		if err := r.Investments.Create(ctx, req); err != nil {
			return err
		}
		if err := w.Lock(in.Amount); err != nil {
			return err
		}
		return r.Wallets.Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "investment.submitted",
		EntityType: "investment_request",
		EntityID:   req.RequestID,
		InvestorID: req.InvestorID,
		Amount:     emitter.Amount(req.RequestedAmount),
		Details:    plan.PlanName,
		Notify: &emitter.Notification{
			UserID:   req.InvestorID,
			Title:    "Investment request received",
			Message:  req.RequestedAmount.StringFixed(2) + " is reserved for " + plan.PlanName + " pending execution.",
			Category: "investment",
		},
	})
	return req, nil
}

// Execute consumes the locked funds into the investor's active allocation for
// the plan, opening one if needed.
func (u *Usecase) Execute(ctx context.Context, act actor.Actor, requestID string) (*domainInvestment.Request, error) {
	head, err := u.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var out domainInvestment.Request
	err = u.wallets.Within(ctx, "investment.execute", head.InvestorID, func(r uow.Repos, w *domainWallet.Wallet) error {
		req, err := r.Investments.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != domainInvestment.StatusPendingExecution {
			return ledgererr.InvalidTransition("investment request %s is %s", req.RequestID, req.Status)
		}

		if err := w.Debit(req.RequestedAmount); err != nil {
			return err
		}
		if err := r.Wallets.Save(ctx, w); err != nil {
			return err
		}

		alloc, err := r.Allocations.GetActiveForUpdate(ctx, req.InvestorID, req.FundPlanID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			alloc = &allocation.Allocation{
				AllocationID: id.NewID32(),
				InvestorID:   req.InvestorID,
				FundPlanID:   req.FundPlanID,
			}
			alloc.Invest(req.RequestedAmount)
			err = r.Allocations.Create(ctx, alloc)
		case err == nil:
			alloc.Invest(req.RequestedAmount)
			err = r.Allocations.Save(ctx, alloc)
		}
		if err != nil {
			return err
		}

		now := nowUTC()
		allocID := alloc.AllocationID
		if err := r.Transactions.Create(ctx, &transaction.Transaction{
			TransactionID:    id.NewID32(),
			InvestorID:       req.InvestorID,
			FundPlanID:       req.FundPlanID,
			AllocationID:     &allocID,
			TransactionType:  transaction.TypeInvestment,
			Amount:           req.RequestedAmount,
			PaymentReference: transaction.InvestmentReference(req.RequestID),
			Status:           transaction.StatusCompleted,
			TransactionDate:  now,
			Notes:            req.PaymentMethod,
		}); err != nil {
			return err
		}

		if err := req.MarkExecuted(allocID, act.ID, now); err != nil {
			return err
		}
		if err := r.Investments.Save(ctx, req); err != nil {
			return err
		}
		out = *req
		return nil
	})
	if err != nil {
		return nil, u.notFound(err, requestID)
	}

	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "investment.executed",
		EntityType: "investment_request",
		EntityID:   out.RequestID,
		InvestorID: out.InvestorID,
		Amount:     emitter.Amount(out.RequestedAmount),
		Details:    "allocation " + *out.AllocationID,
		Notify: &emitter.Notification{
			UserID:   out.InvestorID,
			Title:    "Investment executed",
			Message:  out.RequestedAmount.StringFixed(2) + " has been invested.",
			Category: "investment",
		},
	})
	return &out, nil
}

// Reject releases the lock. A request that is already terminal comes back
// unchanged.
func (u *Usecase) Reject(ctx context.Context, act actor.Actor, in RejectInput) (*domainInvestment.Request, error) {
	head, err := u.Get(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if head.Status.Terminal() {
		return head, nil
	}

	var (
		out  domainInvestment.Request
		noop bool
	)
	err = u.wallets.Within(ctx, "investment.reject", head.InvestorID, func(r uow.Repos, w *domainWallet.Wallet) error {
		req, err := r.Investments.GetByRequestIDForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req.Status.Terminal() {
			out, noop = *req, true
			return nil
		}
		if err := w.Unlock(req.RequestedAmount); err != nil {
			return err
		}
		if err := r.Wallets.Save(ctx, w); err != nil {
			return err
		}
		if err := req.MarkRejected(in.Reason, act.ID, nowUTC()); err != nil {
			return err
		}
		if err := r.Investments.Save(ctx, req); err != nil {
			return err
		}
		out = *req
		return nil
	})
	if err != nil {
		return nil, u.notFound(err, in.RequestID)
	}
	if noop {
		return &out, nil
	}

	u.events.Emit(ctx, emitter.Event{
		Actor:      act,
		Action:     "investment.rejected",
		EntityType: "investment_request",
		EntityID:   out.RequestID,
		InvestorID: out.InvestorID,
		Amount:     emitter.Amount(out.RequestedAmount),
		Details:    in.Reason,
		Notify: &emitter.Notification{
			UserID:   out.InvestorID,
			Title:    "Investment request rejected",
			Message:  "Your request was rejected and " + out.RequestedAmount.StringFixed(2) + " was released. " + in.Reason,
			Category: "investment",
		},
	})
	return &out, nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*domainInvestment.Request, error) {
	var out *domainInvestment.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Investments.GetByRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, u.notFound(err, requestID)
	}
	return out, nil
}

func (u *Usecase) List(ctx context.Context, investorID string) ([]domainInvestment.Request, error) {
	var out []domainInvestment.Request
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Investments.ListByInvestorID(ctx, investorID)
		return err
	})
	return out, err
}

func (u *Usecase) notFound(err error, requestID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledgererr.NotFound("investment_request", requestID)
	}
	return err
}
