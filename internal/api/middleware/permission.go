package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

// RequirePermission allows the request through only when the authenticated
// principal may perform action. When resourceParam is set, the route
// parameter of that name is the resource checked. Must run after Auth.
func RequirePermission(action domain.Action, resourceParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return unauthorized(domain.ErrUnauthenticated)
			}

			var resource string
			if resourceParam != "" {
				resource = c.Param(resourceParam)
			}

			decision := domain.Authorize(claims.Principal(), action, resource)
			if !decision.Allowed {
				return echo.NewHTTPError(http.StatusForbidden, decision.Reason).SetInternal(decision.Err())
			}
			return next(c)
		}
	}
}
