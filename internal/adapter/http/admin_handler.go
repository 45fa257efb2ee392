package http

import (
	"net/http"

	"fund-ledger/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AdminHandler struct {
	reconcile *reconcile.Usecase
	log       *zap.Logger
}

func NewAdminHandler(rc *reconcile.Usecase, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{reconcile: rc, log: log}
}

// Reconcile answers 200 with the report even when it shows drift.
func (h *AdminHandler) Reconcile(c echo.Context) error {
	investorID, ok, err := pathID(c, "investor_id")
	if !ok {
		return err
	}
	rep, err := h.reconcile.Wallet(c.Request().Context(), investorID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rep)
}
