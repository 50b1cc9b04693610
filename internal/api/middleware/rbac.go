package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// RBAC lets the request through only when a user is signed in with one of
// allowedRoles. It must run after Session.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ok, _ := c.Get(CtxAuthenticated).(bool); !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			}
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
