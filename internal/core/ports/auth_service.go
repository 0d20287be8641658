package ports

import (
	"context"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

// RegisterInput carries the fields accepted on registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned after a successful register or login. Claims holds
// the payload embedded in Token, including its timestamps.
type AuthResult struct {
	Token  string
	User   *domain.User
	Claims domain.Claims
}

// UpdateAccessInput carries an admin change to a user's role and overrides.
// A nil Role leaves the role unchanged; a nil AllowedCategories leaves the
// override unchanged while an empty slice clears it.
type UpdateAccessInput struct {
	Role              *string
	AllowedCategories []string
}

// PermissionsView describes what a principal may do.
type PermissionsView struct {
	Role                 domain.Role
	Policy               domain.Policy
	AccessibleCategories []string
}

// AuthService orchestrates registration, login and user administration.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Verify(ctx context.Context, token string) (*domain.Claims, error)
	Refresh(ctx context.Context, claims *domain.Claims) (*AuthResult, error)
	Logout(ctx context.Context, claims *domain.Claims) error
	ChangePassword(ctx context.Context, actor *domain.Claims, current, next string) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
	Permissions(claims *domain.Claims) (*PermissionsView, error)
	ListUsers(ctx context.Context, actor *domain.Claims) ([]*domain.User, error)
	GetUser(ctx context.Context, actor *domain.Claims, id string) (*domain.User, error)
	UpdateUserAccess(ctx context.Context, actor *domain.Claims, id string, in UpdateAccessInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.Claims, id string) error
}

// TokenService mints and validates bearer tokens.
type TokenService interface {
	// Issue signs claims and returns them with IssuedAt/ExpiresAt filled in.
	Issue(claims domain.Claims) (string, domain.Claims, error)
	Verify(token string) (*domain.Claims, error)
}
