package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/indumine/catalog-auth/internal/api/middleware"
	"github.com/indumine/catalog-auth/internal/core/domain"
)

// ctxClaims returns the claims injected by the Auth middleware. Their absence
// means the route was registered without Auth; treat it as unauthenticated.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required").SetInternal(domain.ErrUnauthenticated)
	}
	return claims, nil
}
