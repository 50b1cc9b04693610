package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/formasuite/trainerdesk/internal/api/docs"
	"github.com/formasuite/trainerdesk/internal/api/handler"
	"github.com/formasuite/trainerdesk/internal/api/middleware"
	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
	infrahttp "github.com/formasuite/trainerdesk/internal/infrastructure/http"
	"github.com/formasuite/trainerdesk/internal/infrastructure/http/handlers"
)

const requestTimeout = 30 * time.Second

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Auth   ports.AuthService
	Extras ports.ExtrasService
	// Probes are pinged by GET /health/ready, keyed by dependency name.
	Probes map[string]handlers.Pinger
	Log    zerolog.Logger
	// Swagger mounts /swagger/* when true.
	Swagger bool
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// process-wide default registry, where the service metrics also live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title        trainerdesk API
// @version      1.0
// @description  Local session and extras API for the training-session manager.
// @BasePath     /
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig(deps.Registry)))

	// --- Probes and metrics (no session required) ---
	infrahttp.RegisterProbes(e, deps.Probes)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandlerConfig(deps.Registry)))
	if deps.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login, timeout())
	auth.POST("/logout", authHandler.Logout, timeout())
	auth.GET("/status", authHandler.Status)
	auth.GET("/events", authHandler.Events)
	auth.POST("/reset-password", authHandler.ResetPassword, timeout())

	// --- Extras routes (signed-in users only) ---
	extrasHandler := handler.NewExtrasHandler(deps.Extras)
	extras := e.Group("/extras", middleware.Session(deps.Auth))
	extras.POST("/flush", extrasHandler.Flush, middleware.RBAC(domain.RoleAdmin), timeout())

	anyone := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)
	extras.GET("/:kind/:id", extrasHandler.Get, anyone)
	extras.PUT("/:kind/:id", extrasHandler.Put, anyone)
	extras.DELETE("/:kind/:id", extrasHandler.Delete, anyone)

	return e
}

func promConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "trainerdesk"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func promHandlerConfig(reg *prometheus.Registry) echoprometheus.HandlerConfig {
	var cfg echoprometheus.HandlerConfig
	if reg != nil {
		cfg.Gatherer = reg
	}
	return cfg
}

func timeout() echo.MiddlewareFunc {
	return echomiddleware.ContextTimeout(requestTimeout)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
