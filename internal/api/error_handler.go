package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/indumine/catalog-auth/internal/api/handler"
	"github.com/indumine/catalog-auth/internal/core/domain"
)

// Error codes carried in the "code" field of the error envelope.
const (
	codeValidation         = "VALIDATION_ERROR"
	codeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeUnauthenticated    = "UNAUTHENTICATED"
	codeForbidden          = "FORBIDDEN"
	codeNotFound           = "NOT_FOUND"
	codeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	codePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	codeUnsupportedMedia   = "UNSUPPORTED_MEDIA_TYPE"
	codeTooManyRequests    = "TOO_MANY_REQUESTS"
	codeServiceUnavailable = "SERVICE_UNAVAILABLE"
	codeRequestError       = "REQUEST_ERROR"
	codeBadGateway         = "BAD_GATEWAY"
	codeInternal           = "INTERNAL_ERROR"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<KIND>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (router 404/405, middleware 401/403, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, he.Internal)
		}
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message), Code: codeForStatus(he.Code)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, handler.ErrorResponse{Error: err.Error(), Code: codeValidation}
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return http.StatusBadRequest, handler.ErrorResponse{Error: domain.ErrDuplicateIdentity.Error(), Code: codeDuplicateIdentity}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "invalid credentials", Code: codeInvalidCredentials}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "authentication required", Code: codeUnauthenticated}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Error: forbiddenMessage(err), Code: codeForbidden}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: notFoundMessage(err), Code: codeNotFound}
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", c.Path()).Msg("catalog upstream failure")
		return http.StatusBadGateway, handler.ErrorResponse{Error: domain.ErrUpstream.Error(), Code: codeBadGateway}
	}

	// Unexpected error: log the real cause, return a generic message.
	logUnexpected(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error", Code: codeInternal}
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

// forbiddenMessage returns the denial reason produced by the permission
// table, which is safe to show.
func forbiddenMessage(err error) string {
	if msg := err.Error(); msg != domain.ErrForbidden.Error() {
		return msg
	}
	return "access forbidden"
}

func notFoundMessage(err error) string {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUserNotFound.Error()
	}
	return "resource not found"
}

// codeForStatus maps statuses raised by echo and its middleware to a stable
// code.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return codeValidation
	case http.StatusUnauthorized:
		return codeUnauthenticated
	case http.StatusForbidden:
		return codeForbidden
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusMethodNotAllowed:
		return codeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return codePayloadTooLarge
	case http.StatusUnsupportedMediaType:
		return codeUnsupportedMedia
	case http.StatusTooManyRequests:
		return codeTooManyRequests
	case http.StatusBadGateway:
		return codeBadGateway
	case http.StatusServiceUnavailable:
		return codeServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		return codeInternal
	}
	return codeRequestError
}
