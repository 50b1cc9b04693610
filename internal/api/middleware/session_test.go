package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

type fixedState struct {
	state domain.AuthState
}

func (f fixedState) State() domain.AuthState { return f.state }

func TestSession_SignedIn(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(fixedState{state: domain.SignedIn(domain.User{ID: 7, Email: "a@b.com", Role: "admin"})})
	handler := mw(func(c echo.Context) error {
		if c.Get(CtxAuthenticated) != true {
			t.Fatalf("authenticated not set")
		}
		if c.Get(CtxRole) != "admin" {
			t.Fatalf("role not set, got %v", c.Get(CtxRole))
		}
		if c.Get(CtxUserID) != int64(7) {
			t.Fatalf("user_id not set, got %v", c.Get(CtxUserID))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestSession_SignedOutThenRBAC(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(fixedState{state: domain.SignedOut()})(
		RBAC(domain.RoleAdmin, domain.RoleUser)(func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		}),
	)

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if c.Get(CtxRole) != nil {
		t.Fatalf("role should not be set when signed out")
	}
}
