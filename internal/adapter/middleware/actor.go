package middleware

import (
	"net/http"
	"strings"

	"fund-ledger/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "Ax-Actor-Id"
	HeaderActorRole = "Ax-Actor-Role"

	actorCtxKey = "ledger.actor"
)

// RequireRole reads the caller identity set by the upstream auth proxy and
// rejects roles not listed. An empty list admits any known role.
func RequireRole(roles ...actor.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			if !reHex32.MatchString(id) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + HeaderActorID})
			}
			role, ok := actor.ParseRole(c.Request().Header.Get(HeaderActorRole))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + HeaderActorRole})
			}
			if len(roles) > 0 && !hasRole(roles, role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "role " + string(role) + " may not call this endpoint"})
			}
			c.Set(actorCtxKey, actor.Actor{ID: id, Role: role})
			return next(c)
		}
	}
}

func hasRole(roles []actor.Role, r actor.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// ActorFrom returns the caller stored by RequireRole.
func ActorFrom(c echo.Context) (actor.Actor, bool) {
	a, ok := c.Get(actorCtxKey).(actor.Actor)
	return a, ok
}

// CanActFor lets admins and the system act on any investor; investors only on themselves.
func CanActFor(a actor.Actor, investorID string) bool {
	return a.Role != actor.RoleInvestor || a.ID == investorID
}
