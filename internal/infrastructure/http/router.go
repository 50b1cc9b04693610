package http

import (
	"github.com/labstack/echo/v4"

	"github.com/formasuite/trainerdesk/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes. They sit outside
// the session middleware so orchestrators can call them unauthenticated.
func RegisterProbes(e *echo.Echo, deps map[string]handlers.Pinger) {
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
}
