package http

import (
	"errors"
	"net/http"

	"fund-ledger/internal/domain/ledgererr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// writeError maps ledger error kinds to HTTP codes. Unknown errors are
// logged and answered with a generic 500 so internals never leak.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var le *ledgererr.Error
	field := ""
	if errors.As(err, &le) {
		field = le.Field
	}
	msg := ledgererr.Message(err)

	switch {
	case errors.Is(err, ledgererr.ErrValidation):
		resp := ErrorResponse{Error: "validation failed"}
		if field != "" {
			resp.Details = []FieldError{{Field: field, Message: msg}}
		} else {
			resp.Details = []FieldError{{Field: "_", Message: msg}}
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, ledgererr.ErrInsufficientFunds):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "insufficient_funds",
			Details: []FieldError{{Field: "available_balance", Message: msg}},
		})
	case errors.Is(err, ledgererr.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: msg})
	case errors.Is(err, ledgererr.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: msg})
	case errors.Is(err, ledgererr.ErrBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "busy, retry shortly"})
	case errors.Is(err, ledgererr.ErrInvariantViolation):
		log.Error("request hit ledger invariant", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "processing failed, please contact support"})
	}
	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// bindAndValidate reports false once it has written a 400 or 422 response.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
