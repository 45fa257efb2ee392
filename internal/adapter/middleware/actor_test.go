package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fund-ledger/internal/domain/actor"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func actorEcho(roles ...actor.Role) *echo.Echo {
	e := echo.New()
	e.POST("/x", func(c echo.Context) error {
		a, ok := ActorFrom(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no actor")
		}
		return c.String(http.StatusOK, string(a.Role)+":"+a.ID)
	}, RequireRole(roles...))
	return e
}

func TestRequireRole(t *testing.T) {
	admin := strings.Repeat("a", 32)
	cases := []struct {
		name     string
		id, role string
		roles    []actor.Role
		want     int
	}{
		{"admin allowed", admin, "fund_admin", []actor.Role{actor.RoleFundAdmin}, http.StatusOK},
		{"role case-insensitive", admin, "FUND_ADMIN", []actor.Role{actor.RoleFundAdmin}, http.StatusOK},
		{"investor forbidden", admin, "investor", []actor.Role{actor.RoleFundAdmin}, http.StatusForbidden},
		{"any role", admin, "investor", nil, http.StatusOK},
		{"missing id", "", "investor", nil, http.StatusUnauthorized},
		{"bad id", "abc", "investor", nil, http.StatusUnauthorized},
		{"unknown role", admin, "root", nil, http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := actorEcho(c.roles...)
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			req.Header.Set(HeaderActorID, c.id)
			req.Header.Set(HeaderActorRole, c.role)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, c.want, rec.Body.String())
			}
		})
	}
}

func TestCanActFor(t *testing.T) {
	inv := actor.Actor{ID: "i1", Role: actor.RoleInvestor}
	if !CanActFor(inv, "i1") || CanActFor(inv, "i2") {
		t.Fatalf("investor may only act on own wallet")
	}
	if !CanActFor(actor.Actor{ID: "a", Role: actor.RoleFundAdmin}, "i2") {
		t.Fatalf("admin may act on any wallet")
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	for _, p := range []string{"/ok", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
	}
	if logs.FilterMessage("request").Len() != 1 {
		t.Fatalf("want one info line, got %v", logs.All())
	}
	failed := logs.FilterMessage("request failed").All()
	if len(failed) != 1 || failed[0].ContextMap()["status"] != int64(http.StatusTeapot) {
		t.Fatalf("want one error line with status 418, got %v", failed)
	}
}
