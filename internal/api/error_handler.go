package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnknownEntityKind), errors.Is(err, domain.ErrInvalidEntityID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrExtrasNotFound):
		return http.StatusNotFound, "extras not found"
	case errors.Is(err, domain.ErrCredentialPersist):
		log.Error().Err(err).Msg("credential store write failed")
		return http.StatusServiceUnavailable, "credential store unavailable"
	case errors.Is(err, domain.ErrStoreClosed):
		return http.StatusServiceUnavailable, "extras store closed"
	}

	// Upstream failures: the backend or identity provider misbehaved.
	var ne *domain.NetworkError
	var de *domain.DecodingError
	switch {
	case errors.As(err, &ne):
		log.Warn().Err(err).Int("upstream_status", ne.StatusCode).Str("path", c.Path()).Msg("upstream request failed")
		return http.StatusBadGateway, "upstream service unavailable"
	case errors.As(err, &de):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream payload rejected")
		return http.StatusBadGateway, "upstream service returned an unexpected response"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
