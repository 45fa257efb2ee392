package http

import (
	"context"
	"net/http"

	"fund-ledger/internal/domain/actor"
	domainWithdrawal "fund-ledger/internal/domain/withdrawal"
	"fund-ledger/internal/usecase/withdrawal"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WithdrawalHandler struct {
	uc  *withdrawal.Usecase
	log *zap.Logger
}

func NewWithdrawalHandler(uc *withdrawal.Usecase, log *zap.Logger) *WithdrawalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WithdrawalHandler{uc: uc, log: log}
}

type createWithdrawalReq struct {
	InvestorID   string `json:"investor_id"     validate:"required,hex32"`
	AllocationID string `json:"allocation_id"   validate:"required,hex32"`
	// optional for full withdrawals
	Amount         string `json:"amount"          validate:"omitempty,money"`
	WithdrawalType string `json:"withdrawal_type" validate:"required,oneof=full partial"`
}

type reviewWithdrawalReq struct {
	Notes  string `json:"notes"  validate:"max=1000"`
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *WithdrawalHandler) Create(c echo.Context) error {
	var req createWithdrawalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	act, ok, err := caller(c, req.InvestorID)
	if !ok {
		return err
	}
	r, err := h.uc.Create(c.Request().Context(), act, withdrawal.CreateInput{
		InvestorID:   req.InvestorID,
		AllocationID: req.AllocationID,
		Amount:       mustMoney(req.Amount),
		Type:         req.WithdrawalType,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *WithdrawalHandler) Get(c echo.Context) error {
	requestID, ok, err := pathID(c, "request_id")
	if !ok {
		return err
	}
	r, err := h.uc.Get(c.Request().Context(), requestID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if _, ok, err := caller(c, r.InvestorID); !ok {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *WithdrawalHandler) ListPending(c echo.Context) error {
	out, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WithdrawalHandler) Approve(c echo.Context) error {
	return h.review(c, h.uc.Approve, func(r reviewWithdrawalReq) string { return r.Notes })
}

func (h *WithdrawalHandler) Reject(c echo.Context) error {
	return h.review(c, h.uc.Reject, func(r reviewWithdrawalReq) string { return r.Reason })
}

type reviewFn func(ctx context.Context, act actor.Actor, in withdrawal.ReviewInput) (*domainWithdrawal.Request, error)

func (h *WithdrawalHandler) review(c echo.Context, apply reviewFn, note func(reviewWithdrawalReq) string) error {
	requestID, ok, err := pathID(c, "request_id")
	if !ok {
		return err
	}
	act, ok, err := caller(c, "")
	if !ok {
		return err
	}
	var req reviewWithdrawalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	r, err := apply(c.Request().Context(), act, withdrawal.ReviewInput{RequestID: requestID, Note: note(req)})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *WithdrawalHandler) Process(c echo.Context) error {
	requestID, ok, err := pathID(c, "request_id")
	if !ok {
		return err
	}
	act, ok, err := caller(c, "")
	if !ok {
		return err
	}
	r, err := h.uc.Process(c.Request().Context(), act, requestID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, r)
}
