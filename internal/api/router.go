package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/indumine/catalog-auth/internal/api/handler"
	"github.com/indumine/catalog-auth/internal/api/middleware"
	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log            zerolog.Logger
	Registry       *prometheus.Registry
	AuthService    ports.AuthService
	CatalogService ports.CatalogService
	Checkers       []handler.Checker
	CORSOrigins    []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	if deps.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "catalog_auth",
			Subsystem:  "http",
			Registerer: deps.Registry,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Registry}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	requireAuth := middleware.Auth(deps.AuthService)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/check-username/:username", authHandler.CheckUsername)
	auth.GET("/check-email/:email", authHandler.CheckEmail)
	auth.GET("/verify", authHandler.Verify, requireAuth)
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.POST("/refresh", authHandler.Refresh, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.POST("/change-password", authHandler.ChangePassword, requireAuth)
	auth.GET("/permissions", authHandler.Permissions, requireAuth)

	// --- User administration ---
	users := auth.Group("/users", requireAuth, middleware.RequirePermission(domain.ActionManageUsers, ""))
	users.GET("", authHandler.ListUsers)
	users.GET("/:id", authHandler.GetUser)
	users.PATCH("/:id", authHandler.UpdateUser)
	users.DELETE("/:id", authHandler.DeleteUser)

	// --- Catalog gateway ---
	if deps.CatalogService != nil {
		catalogHandler := handler.NewCatalogHandler(deps.CatalogService)
		catalog := e.Group("/catalog", requireAuth)
		catalog.GET("/categories", catalogHandler.Categories)
		catalog.GET("/categories/:slug/products", catalogHandler.Products,
			middleware.RequirePermission(domain.ActionView, "slug"))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Log, deps.Checkers...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
