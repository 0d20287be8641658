package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/core/ports"
)

// DemoUser is an account created by SeedDemoUsers.
type DemoUser struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// DemoUsers has one account per role for local development and demos.
var DemoUsers = []DemoUser{
	{Username: "admin_user", Email: "admin@weg.com", Password: "1234", Role: domain.RoleAdmin},
	{Username: "engineer_user", Email: "engineer@weg.com", Password: "engineer123", Role: domain.RoleEngineer},
	{Username: "sales_user", Email: "sales@weg.com", Password: "sales123", Role: domain.RoleSales},
	{Username: "guest_user", Email: "guest@weg.com", Password: "guest123", Role: domain.RoleGuest},
}

// SeedDemoUsers creates any of users that do not exist yet and returns how
// many were created. Running it again is a no-op; losing a race with another
// instance counts as already existing.
func SeedDemoUsers(ctx context.Context, repo ports.UserRepository, hasher *PasswordHasher, users []DemoUser, log zerolog.Logger) (int, error) {
	created := 0
	for _, du := range users {
		email := domain.NormalizeEmail(du.Email)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("seed %s: %w", email, err)
		}

		hash, err := hasher.Hash(du.Password)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", email, err)
		}

		now := time.Now().UTC()
		_, err = repo.Create(ctx, &domain.User{
			Username:          domain.NormalizeUsername(du.Username),
			Email:             email,
			PasswordHash:      hash,
			Role:              du.Role,
			AllowedCategories: []string{},
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateIdentity):
			continue
		case err != nil:
			return created, fmt.Errorf("seed %s: %w", email, err)
		}

		created++
		log.Info().Str("email", email).Str("role", string(du.Role)).Msg("demo user created")
	}
	return created, nil
}
