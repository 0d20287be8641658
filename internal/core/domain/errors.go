package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Handlers translate these into HTTP
// status codes in api.NewHTTPErrorHandler; anything else is an internal error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("catalog service unavailable")

	// ErrUserNotFound is the credential store's ErrNotFound.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

// Token verification failures. All of them wrap ErrUnauthenticated so the
// caller cannot tell which check failed.
var (
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenInvalidSignature = fmt.Errorf("%w: invalid token signature", ErrUnauthenticated)
	ErrTokenMalformed        = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
)

// Validationf builds an ErrValidation carrying a client-safe detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
