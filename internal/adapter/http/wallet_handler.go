package http

import (
	"net/http"

	"fund-ledger/internal/usecase/investment"
	"fund-ledger/internal/usecase/wallet"
	"fund-ledger/internal/usecase/withdrawal"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WalletHandler struct {
	wallets     *wallet.Manager
	investments *investment.Usecase
	withdrawals *withdrawal.Usecase
	log         *zap.Logger
}

func NewWalletHandler(wallets *wallet.Manager, investments *investment.Usecase, withdrawals *withdrawal.Usecase, log *zap.Logger) *WalletHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WalletHandler{wallets: wallets, investments: investments, withdrawals: withdrawals, log: log}
}

type depositReq struct {
	Amount           string `json:"amount"            validate:"required,money"`
	PaymentReference string `json:"payment_reference" validate:"max=128"`
	Notes            string `json:"notes"             validate:"max=1000"`
}

// investorScope validates :investor_id and the caller's right to see it.
func (h *WalletHandler) investorScope(c echo.Context) (string, bool, error) {
	investorID, ok, err := pathID(c, "investor_id")
	if !ok {
		return "", false, err
	}
	if _, ok, err := caller(c, investorID); !ok {
		return "", false, err
	}
	return investorID, true, nil
}

func (h *WalletHandler) GetWallet(c echo.Context) error {
	investorID, ok, err := h.investorScope(c)
	if !ok {
		return err
	}
	w, err := h.wallets.GetWallet(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	investorID, ok, err := pathID(c, "investor_id")
	if !ok {
		return err
	}
	act, ok, err := caller(c, investorID)
	if !ok {
		return err
	}
	var req depositReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	w, err := h.wallets.Deposit(c.Request().Context(), act, wallet.DepositInput{
		InvestorID:       investorID,
		Amount:           mustMoney(req.Amount),
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WalletHandler) ListAllocations(c echo.Context) error {
	investorID, ok, err := h.investorScope(c)
	if !ok {
		return err
	}
	out, err := h.wallets.ListAllocations(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WalletHandler) ListTransactions(c echo.Context) error {
	investorID, ok, err := h.investorScope(c)
	if !ok {
		return err
	}
	out, err := h.wallets.ListTransactions(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WalletHandler) ListInvestments(c echo.Context) error {
	investorID, ok, err := h.investorScope(c)
	if !ok {
		return err
	}
	out, err := h.investments.List(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WalletHandler) ListWithdrawals(c echo.Context) error {
	investorID, ok, err := h.investorScope(c)
	if !ok {
		return err
	}
	out, err := h.withdrawals.List(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
