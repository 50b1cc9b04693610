package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Login signs the user in against the backend.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  stateResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStateResponse(h.authService.State()))
}

// Logout signs the current user out.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200   {object}  stateResponse
// @Failure      500   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.SignOut(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStateResponse(h.authService.State()))
}

// Status returns the current session state. With refresh=true the state is
// first re-read from the credential store.
//
// @Summary      Session state
// @Tags         auth
// @Produce      json
// @Param        refresh  query     bool  false  "Re-read the stored credential"
// @Success      200      {object}  stateResponse
// @Router       /auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	state := h.authService.State()
	if refresh, _ := strconv.ParseBool(c.QueryParam("refresh")); refresh {
		state = h.authService.CheckAuthStatus(c.Request().Context())
	}
	return c.JSON(http.StatusOK, toStateResponse(state))
}

// ResetPassword asks the identity provider to send a reset email.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Account email"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "sent"})
}

// Events streams session states as server-sent events, starting with the
// current one. Slow readers only ever receive the latest state.
//
// @Summary      Session state stream
// @Tags         auth
// @Produce      text/event-stream
// @Success      200
// @Router       /auth/events [get]
func (h *AuthHandler) Events(c echo.Context) error {
	updates := make(chan domain.AuthState, 1)
	unsubscribe := h.authService.Subscribe(func(s domain.AuthState) {
		select {
		case updates <- s:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- s
		}
	})
	defer unsubscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeStateEvent(w, h.authService.State()); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			if err := writeStateEvent(w, s); err != nil {
				return nil
			}
		}
	}
}

func writeStateEvent(w *echo.Response, s domain.AuthState) error {
	payload, err := json.Marshal(toStateResponse(s))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}
