package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// Context keys set by Session.
const (
	CtxAuthenticated = "authenticated"
	CtxRole          = "role"
	CtxUserID        = "user_id"
)

// StateReader is the part of the session service the middleware needs.
type StateReader interface {
	State() domain.AuthState
}

// Session copies the current session state into the request context so that
// RBAC and handlers can read it without touching the service.
func Session(auth StateReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := auth.State()

			c.Set(CtxAuthenticated, state.IsAuthenticated)
			if state.IsAuthenticated {
				c.Set(CtxRole, string(state.Role))
				c.Set(CtxUserID, state.CurrentUser.ID)
			}

			return next(c)
		}
	}
}
