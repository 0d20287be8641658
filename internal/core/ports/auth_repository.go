package ports

import (
	"context"
	"time"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

// UserRepository is the credential store. It is the only component allowed
// to mutate persisted users. Lookups of a missing user return
// domain.ErrUserNotFound.
type UserRepository interface {
	// FindByEmail matches the normalised (lowercase) email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsername matches the trimmed username exactly.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists a new user and returns it with its generated ID.
	// Uniqueness of email and username is enforced here, not by callers.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// ListAll returns every user ordered by creation time, without password hashes.
	ListAll(ctx context.Context) ([]*domain.User, error)
	UpdateAccess(ctx context.Context, id string, role domain.Role, allowedCategories []string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
