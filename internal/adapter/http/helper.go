package http

import (
	"net/http"

	"fund-ledger/internal/adapter/middleware"
	"fund-ledger/internal/domain/actor"
	"fund-ledger/pkg/id"

	"github.com/labstack/echo/v4"
)

// caller returns the authenticated actor and checks it may act for investorID.
// An empty investorID skips the ownership check.
func caller(c echo.Context, investorID string) (actor.Actor, bool, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return a, false, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
	}
	if investorID != "" && !middleware.CanActFor(a, investorID) {
		return a, false, c.JSON(http.StatusForbidden, ErrorResponse{Error: "investors may only access their own records"})
	}
	return a, true, nil
}

// pathID reads a hex32 path param, answering 400 when it is malformed.
func pathID(c echo.Context, name string) (string, bool, error) {
	v := c.Param(name)
	if !id.Valid(v) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid path param",
			Details: []FieldError{{Field: name, Message: "must be 32-char lowercase hex"}},
		})
	}
	return v, true, nil
}
