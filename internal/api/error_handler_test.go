package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"user not found", fmt.Errorf("get user: %w", domain.ErrUserNotFound), http.StatusNotFound, codeNotFound, "user not found"},
		{"other not found", domain.ErrNotFound, http.StatusNotFound, codeNotFound, "resource not found"},
		{"method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, codeMethodNotAllowed, ""},
		{"payload too large", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, codePayloadTooLarge, ""},
		{"unmapped status", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, codeRequestError, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, codeInternal, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			status, resp := resolveError(tc.err, zerolog.Nop(), c)
			if status != tc.wantStatus || resp.Code != tc.wantCode {
				t.Fatalf("got %d %s, want %d %s", status, resp.Code, tc.wantStatus, tc.wantCode)
			}
			if tc.wantMsg != "" && resp.Error != tc.wantMsg {
				t.Fatalf("message %q, want %q", resp.Error, tc.wantMsg)
			}
		})
	}
}
