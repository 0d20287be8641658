package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

// Context keys set by Auth.
const (
	ContextKeyClaims = "claims"
	ContextKeyToken  = "token"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}

// Auth validates the bearer token and injects its claims into the context.
// Every failure yields the same 401; the cause is only kept as the internal
// error for logging.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(domain.ErrUnauthenticated)
			}

			claims, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return unauthorized(err)
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyToken, token)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(cause error) error {
	return echo.NewHTTPError(http.StatusUnauthorized, "authentication required").SetInternal(cause)
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*domain.Claims)
	return claims, ok && claims != nil
}

// TokenFrom returns the raw bearer token stored by Auth.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(ContextKeyToken).(string)
	return token
}
