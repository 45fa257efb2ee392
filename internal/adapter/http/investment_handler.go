package http

import (
	"net/http"

	"fund-ledger/internal/usecase/investment"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type InvestmentHandler struct {
	uc  *investment.Usecase
	log *zap.Logger
}

func NewInvestmentHandler(uc *investment.Usecase, log *zap.Logger) *InvestmentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvestmentHandler{uc: uc, log: log}
}

type submitInvestmentReq struct {
	InvestorID    string `json:"investor_id"    validate:"required,hex32"`
	FundPlanID    string `json:"fund_plan_id"   validate:"required,hex32"`
	Amount        string `json:"amount"         validate:"required,money"`
	PaymentMethod string `json:"payment_method" validate:"max=32"`
}

type rejectInvestmentReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *InvestmentHandler) Submit(c echo.Context) error {
	var req submitInvestmentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	act, ok, err := caller(c, req.InvestorID)
	if !ok {
		return err
	}
	r, err := h.uc.Submit(c.Request().Context(), act, investment.SubmitInput{
		InvestorID:    req.InvestorID,
		FundPlanID:    req.FundPlanID,
		Amount:        mustMoney(req.Amount),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *InvestmentHandler) Get(c echo.Context) error {
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

func (h *InvestmentHandler) Execute(c echo.Context) error {
	requestID, ok, err := pathID(c, "request_id")
	if !ok {
		return err
	}
	act, ok, err := caller(c, "")
	if !ok {
		return err
	}
	r, err := h.uc.Execute(c.Request().Context(), act, requestID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *InvestmentHandler) Reject(c echo.Context) error {
	requestID, ok, err := pathID(c, "request_id")
	if !ok {
		return err
	}
	act, ok, err := caller(c, "")
	if !ok {
		return err
	}
	var req rejectInvestmentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	r, err := h.uc.Reject(c.Request().Context(), act, investment.RejectInput{RequestID: requestID, Reason: req.Reason})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, r)
}
