package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler handles GET /health. Liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Checker pings one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	Dependency string
	Fn         func(ctx context.Context) error
}

func (f CheckFunc) Name() string                    { return f.Dependency }
func (f CheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// ReadinessHandler handles GET /health/ready. Readiness probe.
// Checks every configured dependency before declaring the service ready.
// Failure details are logged, never returned.
type ReadinessHandler struct {
	log      zerolog.Logger
	checkers []Checker
}

func NewReadinessHandler(log zerolog.Logger, checkers ...Checker) *ReadinessHandler {
	return &ReadinessHandler{log: log, checkers: checkers}
}

type dependencyStatus struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checkers))
	healthy := true

	for _, chk := range h.checkers {
		if err := chk.Check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", chk.Name()).Msg("readiness check failed")
			deps[chk.Name()] = dependencyStatus{Status: "unhealthy"}
			healthy = false
			continue
		}
		deps[chk.Name()] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
