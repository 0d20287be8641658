package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

func permissionContext(claims *domain.Claims, slug string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if slug != "" {
		c.SetParamNames("slug")
		c.SetParamValues(slug)
	}
	if claims != nil {
		c.Set(ContextKeyClaims, claims)
	}
	return c, rec
}

func TestRequirePermission_Allows(t *testing.T) {
	c, rec := permissionContext(&domain.Claims{Role: domain.RoleAdmin}, "")

	called := false
	handler := RequirePermission(domain.ActionManageUsers, "")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_Forbids(t *testing.T) {
	c, _ := permissionContext(&domain.Claims{Role: domain.RoleGuest}, "")

	handler := RequirePermission(domain.ActionManageUsers, "")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden in chain")
	}
}

func TestRequirePermission_ResourceParam(t *testing.T) {
	guest := &domain.Claims{Role: domain.RoleGuest}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := RequirePermission(domain.ActionView, "slug")

	c, _ := permissionContext(guest, "Motors")
	if err := mw(next)(c); err != nil {
		t.Fatalf("guest should view motors: %v", err)
	}

	c, _ = permissionContext(guest, "drives")
	if err := mw(next)(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("guest must not view drives, got %v", err)
	}
}

func TestRequirePermission_WithoutClaims(t *testing.T) {
	c, _ := permissionContext(nil, "")
	err := RequirePermission(domain.ActionView, "")(func(echo.Context) error { return nil })(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
